package renderer

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/nikogura/learning-designer/pkg/config"
	"github.com/pkg/errors"
)

// ErrPandocMissing means the pandoc binary could not be found.
var ErrPandocMissing = errors.New("pandoc not found in PATH (install pandoc to render HTML and DOCX)")

// Pandoc renders Markdown documents through the pandoc binary.
type Pandoc struct {
	Binary       string
	ReferenceDoc string
}

// NewPandoc creates a renderer from configuration.
func NewPandoc(cfg config.PandocConfig) (p *Pandoc) {
	binary := cfg.Binary
	if binary == "" {
		binary = "pandoc"
	}
	p = &Pandoc{
		Binary:       binary,
		ReferenceDoc: cfg.ReferenceDoc,
	}
	return p
}

// Available reports whether the pandoc binary can be found.
func (p *Pandoc) Available() (ok bool) {
	_, err := exec.LookPath(p.Binary)
	ok = err == nil
	return ok
}

// ToHTML converts Markdown to an HTML fragment with tables and fenced code.
func (p *Pandoc) ToHTML(ctx context.Context, markdown string) (html string, err error) {
	if !p.Available() {
		err = ErrPandocMissing
		return html, err
	}

	cmd := exec.CommandContext(ctx, p.Binary,
		"-f", "markdown+pipe_tables+fenced_code_blocks",
		"-t", "html",
	)
	cmd.Stdin = strings.NewReader(markdown)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err != nil {
		err = errors.Wrapf(err, "pandoc failed: %s", stderr.String())
		return html, err
	}

	html = stdout.String()
	return html, err
}

// RenderDOCX converts a Markdown file to DOCX, styled by the reference document when one is set.
func (p *Pandoc) RenderDOCX(ctx context.Context, markdownPath, outputPath string) (err error) {
	if !p.Available() {
		err = ErrPandocMissing
		return err
	}

	err = validateFiles(markdownPath, p.ReferenceDoc)
	if err != nil {
		return err
	}

	outputDir := filepath.Dir(outputPath)
	err = os.MkdirAll(outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outputDir)
		return err
	}

	args := []string{
		"-f", "markdown",
		"-t", "docx",
		"-o", outputPath,
	}
	if p.ReferenceDoc != "" {
		args = append(args, "--reference-doc", p.ReferenceDoc)
	}
	args = append(args, markdownPath)

	cmd := exec.CommandContext(ctx, p.Binary, args...)

	var output []byte
	output, err = cmd.CombinedOutput()
	if err != nil {
		err = errors.Wrapf(err, "pandoc failed: %s", string(output))
		return err
	}

	return err
}

// DOCX renders Markdown content to DOCX bytes using a scratch directory.
func (p *Pandoc) DOCX(ctx context.Context, markdown string) (data []byte, err error) {
	var dir string
	dir, err = os.MkdirTemp("", "learning-designer-docx-")
	if err != nil {
		err = errors.Wrap(err, "failed to create temp directory")
		return data, err
	}
	defer os.RemoveAll(dir)

	mdPath := filepath.Join(dir, "curriculum.md")
	docxPath := filepath.Join(dir, "curriculum.docx")

	err = WriteMarkdown(markdown, mdPath)
	if err != nil {
		return data, err
	}

	err = p.RenderDOCX(ctx, mdPath, docxPath)
	if err != nil {
		return data, err
	}

	data, err = os.ReadFile(docxPath)
	if err != nil {
		err = errors.Wrapf(err, "failed to read rendered document: %s", docxPath)
		return data, err
	}

	return data, err
}

// validateFiles checks that every non-empty path exists.
func validateFiles(paths ...string) (err error) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		_, err = os.Stat(path)
		if os.IsNotExist(err) {
			err = errors.Errorf("file not found: %s", path)
			return err
		}
	}
	err = nil
	return err
}

// WriteMarkdown writes markdown content to a file.
func WriteMarkdown(content, outputPath string) (err error) {
	outputDir := filepath.Dir(outputPath)
	err = os.MkdirAll(outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outputDir)
		return err
	}

	err = os.WriteFile(outputPath, []byte(content), 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write markdown file: %s", outputPath)
		return err
	}

	return err
}
