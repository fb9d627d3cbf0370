package renderer

import (
	"strings"
	"unicode"

	"github.com/nikogura/learning-designer/pkg/curriculum"
)

const maxNamePart = 50

// DownloadFilename names a finalized curriculum:
// <project>_<learner>_curriculum.<ext>, or <project>_curriculum.<ext> when
// the learner is unnamed.
func DownloadFilename(confirmed curriculum.ConfirmedData, ext string) (name string) {
	project := sanitizeName(confirmed.Project.ProjectTitle)
	if project == "" {
		project = "course"
	}
	learner := sanitizeName(confirmed.Learner.LearnerName)

	ext = strings.TrimPrefix(ext, ".")

	if learner == "" {
		name = project + "_curriculum." + ext
		return name
	}

	name = project + "_" + learner + "_curriculum." + ext
	return name
}

// sanitizeName drops characters that are unsafe in file names, turns
// whitespace into single underscores and caps the length.
func sanitizeName(text string) (clean string) {
	var b strings.Builder
	lastUnderscore := false

	for _, r := range text {
		switch {
		case strings.ContainsRune(`<>:"/\|?*`, r), unicode.IsControl(r) && !unicode.IsSpace(r):
			continue
		case unicode.IsSpace(r) || r == '_':
			if !lastUnderscore {
				b.WriteRune('_')
			}
			lastUnderscore = true
		default:
			b.WriteRune(r)
			lastUnderscore = false
		}
	}

	runes := []rune(b.String())
	if len(runes) > maxNamePart {
		runes = runes[:maxNamePart]
	}

	clean = strings.Trim(string(runes), "_")
	return clean
}
