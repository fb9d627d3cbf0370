package intake

import (
	"encoding/json"
	"os"

	"github.com/nikogura/learning-designer/pkg/curriculum"
	"github.com/pkg/errors"
)

// Load reads an intake document (learner, project and institution) from a
// JSON file and validates it.
func Load(path string) (raw curriculum.RawInputs, err error) {
	raw, err = Read(path)
	if err != nil {
		return raw, err
	}

	err = raw.Validate()
	if err != nil {
		err = errors.Wrap(err, "intake validation failed")
		return raw, err
	}

	return raw, err
}

// Read decodes an intake document without validating it, so callers can
// fill missing fields from other sources first.
func Read(path string) (raw curriculum.RawInputs, err error) {
	var fileData []byte
	fileData, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read intake file: %s", path)
		return raw, err
	}

	err = json.Unmarshal(fileData, &raw)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse intake JSON: %s", path)
		return raw, err
	}

	return raw, err
}
