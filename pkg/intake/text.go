package intake

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/nikogura/learning-designer/pkg/curriculum"
	"github.com/pkg/errors"
)

// ErrConverterMissing means the external program that reads an upload's
// file type is not installed.
var ErrConverterMissing = errors.New("document converter not installed")

// TextExtractor turns an uploaded resume file into plain text.
type TextExtractor struct {
	// PandocBinary converts .docx files.
	PandocBinary string
	// PDFToTextBinary converts .pdf files.
	PDFToTextBinary string
}

// NewTextExtractor creates an extractor using the given pandoc binary and
// pdftotext from PATH.
func NewTextExtractor(pandoc string) (extractor TextExtractor) {
	if pandoc == "" {
		pandoc = "pandoc"
	}
	extractor = TextExtractor{
		PandocBinary:    pandoc,
		PDFToTextBinary: "pdftotext",
	}
	return extractor
}

// ExtractText returns the text content of an uploaded file. Plain text and
// Markdown are used as-is; .docx and .pdf go through external converters.
func (e TextExtractor) ExtractText(ctx context.Context, filename string, data []byte) (text string, err error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".txt", ".md", ".markdown":
		text = string(data)
	case ".docx":
		text, err = e.convertFile(ctx, data, ext, e.PandocBinary, "-f", "docx", "-t", "plain", "--wrap=none")
	case ".pdf":
		text, err = e.convertFile(ctx, data, ext, e.PDFToTextBinary, "-layout")
	default:
		err = errors.Wrapf(curriculum.ErrValidation, "unsupported file type %q: upload a .pdf, .docx, .txt or .md file", ext)
		return text, err
	}
	if err != nil {
		return text, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		err = errors.Wrapf(curriculum.ErrValidation, "no text could be extracted from %s", filename)
		return text, err
	}

	return text, err
}

// convertFile writes data to a temporary file and runs the converter on it,
// reading the result from stdout.
func (e TextExtractor) convertFile(ctx context.Context, data []byte, ext, binary string, args ...string) (text string, err error) {
	_, err = exec.LookPath(binary)
	if err != nil {
		err = errors.Wrapf(ErrConverterMissing, "%s not found in PATH (install it to read %s files)", binary, ext)
		return text, err
	}

	var dir string
	dir, err = os.MkdirTemp("", "learning-designer-upload-")
	if err != nil {
		err = errors.Wrap(err, "failed to create temp directory")
		return text, err
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "upload"+ext)
	err = os.WriteFile(input, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write upload: %s", input)
		return text, err
	}

	args = append(args, input)
	if binary == e.PDFToTextBinary {
		// pdftotext writes to stdout when the output file is "-"
		args = append(args, "-")
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err != nil {
		err = errors.Wrapf(curriculum.ErrValidation, "could not read %s file: %s", ext, strings.TrimSpace(stderr.String()))
		return text, err
	}

	text = stdout.String()
	return text, err
}
