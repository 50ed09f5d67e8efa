package draft

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk form of a draft. YAML and JSON are both accepted
// since JSON documents are valid YAML.
type Document struct {
	Title          string     `yaml:"title" json:"title"`
	RecipientEmail string     `yaml:"recipient_email" json:"recipient_email"`
	QuestionType   string     `yaml:"question_type" json:"question_type"`
	Questions      []Question `yaml:"questions,omitempty" json:"questions,omitempty"`
	// QuestionsFile points at a line-delimited text file. Relative paths are
	// resolved against the document location by LoadDocument.
	QuestionsFile string `yaml:"questions_file,omitempty" json:"questions_file,omitempty"`
}

// ParseDocument decodes a YAML or JSON draft document.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if len(strings.TrimSpace(string(data))) == 0 {
		return doc, errors.New("draft: document is empty")
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("draft: parse document: %w", err)
	}
	return doc, nil
}

// LoadDocument reads and parses a draft document from disk.
func LoadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("draft: read document: %w", err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return doc, err
	}
	if doc.QuestionsFile != "" && !filepath.IsAbs(doc.QuestionsFile) {
		doc.QuestionsFile = filepath.Join(filepath.Dir(path), doc.QuestionsFile)
	}
	return doc, nil
}

// Apply replays the document onto base through the builder operations, so a
// draft loaded from disk obeys the same invariants as one edited by hand.
// readFile loads QuestionsFile; os.ReadFile is used when it is nil.
func (doc Document) Apply(base Draft, readFile func(string) ([]byte, error)) (Draft, error) {
	qt, ok := ParseQuestionType(doc.QuestionType)
	if !ok {
		return base, fmt.Errorf("draft: unknown question type %q", doc.QuestionType)
	}
	if readFile == nil {
		readFile = os.ReadFile
	}

	d := base.WithQuestionType(qt).
		WithTitle(doc.Title).
		WithRecipientEmail(doc.RecipientEmail)

	if doc.QuestionsFile != "" {
		content, err := readFile(doc.QuestionsFile)
		if err != nil {
			return base, fmt.Errorf("draft: read questions file: %w", err)
		}
		d, err = d.WithInputMode(FileImport).ImportQuestions(ImportedFile{
			Name:    filepath.Base(doc.QuestionsFile),
			Content: content,
		})
		if err != nil {
			return base, err
		}
		return applyOptions(d, doc.Questions), nil
	}

	if len(doc.Questions) == 0 {
		return d, nil
	}

	d, err := d.WithQuestionCount(strconv.Itoa(len(doc.Questions)))
	if err != nil {
		return base, err
	}
	for i, q := range doc.Questions {
		d = d.WithQuestionText(i, q.Text)
	}
	return applyOptions(d, doc.Questions), nil
}

// ToDocument captures the draft as a document. Imported files are not
// written back; their questions are inlined instead.
func (d Draft) ToDocument() Document {
	doc := Document{
		Title:          d.Title,
		RecipientEmail: d.RecipientEmail,
		QuestionType:   string(d.Type()),
	}
	for _, q := range d.Questions {
		doc.Questions = append(doc.Questions, q.clone())
	}
	return doc
}

// Marshal encodes the document as YAML.
func (doc Document) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("draft: encode document: %w", err)
	}
	return out, nil
}

// SaveDocument writes d to path so it can be loaded again with LoadDocument.
func SaveDocument(path string, d Draft) error {
	data, err := d.ToDocument().Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("draft: write document: %w", err)
	}
	return nil
}

func applyOptions(d Draft, questions []Question) Draft {
	if d.Type() != MultipleChoice {
		return d
	}
	for i, q := range questions {
		if i >= len(d.Questions) {
			break
		}
		for j, option := range q.Options {
			for len(d.Questions[i].Options) <= j {
				d = d.AddOption(i)
			}
			d = d.WithOptionText(i, j, option)
		}
	}
	return d
}
