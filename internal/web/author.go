package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-surveyform/pkg/draft"
	"github.com/goliatone/go-surveyform/pkg/form"
	"github.com/goliatone/go-surveyform/pkg/preview"
	"github.com/goliatone/go-surveyform/pkg/render"
)

// Form field names posted by the authoring page.
const (
	fieldEvent         = "event"
	fieldTitle         = "title"
	fieldEmail         = "recipient_email"
	fieldType          = "question_type"
	fieldMode          = "input_mode"
	fieldCount         = "num_questions"
	fieldFile          = "questions_file"
	fieldPreview       = "preview"
	fieldPrevType      = "prev_question_type"
	fieldPrevMode      = "prev_input_mode"
	fieldPrevCount     = "prev_num_questions"
	eventUpdate        = "update"
	eventPreview       = "preview"
	eventEdit          = "edit"
	eventSubmit        = "submit"
	eventClearFile     = "clear_file"
	eventAddOption     = "add_option"
	eventRemoveOption  = "remove_option"
	multipartMemoryCap = 4 << 20
)

func questionField(i int) string  { return draft.QuestionTextKey(i).Path() }
func optionField(i, j int) string { return draft.OptionKey(i, j).Path() }

func parseMode(raw string) draft.InputMode {
	if raw == string(draft.FileImport) {
		return draft.FileImport
	}
	return draft.Manual
}

func (s *Server) newForm(opts ...form.Option) *form.Form {
	return form.New(s.coordinator, append([]form.Option{
		form.WithLogger(s.logger),
		form.WithMaxFileSize(s.maxFileSize),
	}, opts...)...)
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, r, http.StatusOK, s.newForm())
}

// handleNewEvent rebuilds the form from the posted draft, applies the
// changes and the pressed button, then re-renders or redirects.
func (s *Server) handleNewEvent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxFileSize + multipartMemoryCap); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	values := r.PostForm
	if values == nil {
		values = url.Values{}
	}

	base, err := decodeDraft(values)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := s.newForm(form.WithDraft(base), form.WithPreview(values.Get(fieldPreview) == "1"))
	ctx := r.Context()

	if err := applyChanges(f, base, values); err != nil {
		s.failForm(w, r, f, err)
		return
	}
	if err := s.attachUpload(ctx, r, f); err != nil {
		s.failForm(w, r, f, err)
		return
	}

	event, arg := splitEvent(values.Get(fieldEvent))
	switch event {
	case eventPreview:
		f.SetPreview(true)
	case eventEdit:
		f.SetPreview(false)
	case eventClearFile:
		err = f.ClearFile()
	case eventAddOption:
		if i, ok := index(arg, 0); ok {
			err = f.AddOption(i)
		}
	case eventRemoveOption:
		i, okI := index(arg, 0)
		j, okJ := index(arg, 1)
		if okI && okJ {
			err = f.RemoveOption(i, j)
		}
	case eventSubmit:
		outcome, submitErr := f.Submit(ctx)
		if submitErr == nil {
			http.Redirect(w, r, outcome.Redirect, http.StatusSeeOther)
			return
		}
		if errors.Is(submitErr, form.ErrInvalid) {
			f.SetPreview(false)
			s.renderForm(w, r, http.StatusUnprocessableEntity, f)
			return
		}
		s.logger.Warn("create survey", zap.Error(submitErr))
		s.renderForm(w, r, http.StatusBadGateway, f)
		return
	}
	if err != nil {
		s.failForm(w, r, f, err)
		return
	}
	s.renderForm(w, r, http.StatusOK, f)
}

func (s *Server) failForm(w http.ResponseWriter, r *http.Request, f *form.Form, err error) {
	var fieldErr draft.FieldError
	if errors.As(err, &fieldErr) {
		s.renderForm(w, r, http.StatusUnprocessableEntity, f)
		return
	}
	s.logger.Error("author event", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// decodeDraft restores the draft the page was rendered from. Type, mode and
// count come from the prev_* fields so edits to them can be applied as
// events afterwards.
func decodeDraft(values url.Values) (draft.Draft, error) {
	d := draft.New()
	d.Title = values.Get(fieldTitle)
	d.RecipientEmail = values.Get(fieldEmail)
	if t, ok := draft.ParseQuestionType(values.Get(fieldPrevType)); ok {
		d.QuestionType = t
	}
	d.InputMode = parseMode(values.Get(fieldPrevMode))
	d.QuestionCount = values.Get(fieldPrevCount)

	for i := 0; ; i++ {
		texts, ok := values[questionField(i)]
		if !ok {
			break
		}
		q := draft.Question{Text: first(texts)}
		if d.Type() == draft.MultipleChoice {
			q.Options = []string{}
			for j := 0; ; j++ {
				opt, ok := values[optionField(i, j)]
				if !ok {
					break
				}
				q.Options = append(q.Options, first(opt))
			}
		}
		d.Questions = append(d.Questions, q)
	}

	name, content, ok, err := render.DecodeFileFields(values)
	if err != nil {
		return draft.Draft{}, err
	}
	if ok && d.InputMode == draft.FileImport {
		d.File = &draft.ImportedFile{Name: name, Content: content}
	}
	return d, nil
}

// applyChanges turns edits to the type, mode and count inputs into the
// matching form events, in that order. A count left as rendered is not an
// edit, so a type change still clears the questions.
func applyChanges(f *form.Form, base draft.Draft, values url.Values) error {
	if t, ok := draft.ParseQuestionType(values.Get(fieldType)); ok && t != base.Type() {
		if err := f.SetQuestionType(t); err != nil {
			return err
		}
	}
	if _, ok := values[fieldMode]; ok {
		if mode := parseMode(values.Get(fieldMode)); mode != f.Snapshot().Draft.Mode() {
			if err := f.SetInputMode(mode); err != nil {
				return err
			}
		}
	}
	if _, ok := values[fieldCount]; ok && f.Snapshot().Draft.Mode() == draft.Manual {
		if raw := values.Get(fieldCount); raw != base.QuestionCount {
			return f.SetQuestionCount(raw)
		}
	}
	return nil
}

func (s *Server) attachUpload(ctx context.Context, r *http.Request, f *form.Form) error {
	if r.MultipartForm == nil || f.Snapshot().Draft.Mode() != draft.FileImport {
		return nil
	}
	file, header, err := r.FormFile(fieldFile)
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("web: read upload: %w", err)
	}
	defer file.Close()
	if header.Filename == "" {
		return nil
	}
	return f.AttachFile(ctx, header.Filename, file)
}

func splitEvent(raw string) (string, []string) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if parts[0] == "" {
		return eventUpdate, nil
	}
	return parts[0], parts[1:]
}

func index(args []string, pos int) (int, bool) {
	if pos >= len(args) {
		return 0, false
	}
	n, err := strconv.Atoi(args[pos])
	return n, err == nil && n >= 0
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

type choiceView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type optionView struct {
	Index  int    `json:"index"`
	Number int    `json:"number"`
	Name   string `json:"name"`
	Value  string `json:"value"`
	Error  string `json:"error,omitempty"`
}

type questionView struct {
	Index        int          `json:"index"`
	Number       int          `json:"number"`
	Name         string       `json:"name"`
	Text         string       `json:"text"`
	Error        string       `json:"error,omitempty"`
	Options      []optionView `json:"options,omitempty"`
	OptionsError string       `json:"options_error,omitempty"`
	CanRemove    bool         `json:"can_remove"`
}

type formView struct {
	Title          string               `json:"title"`
	RecipientEmail string               `json:"recipient_email"`
	QuestionType   string               `json:"question_type"`
	InputMode      string               `json:"input_mode"`
	QuestionCount  string               `json:"question_count"`
	MultipleChoice bool                 `json:"multiple_choice"`
	FileMode       bool                 `json:"file_mode"`
	FileName       string               `json:"file_name,omitempty"`
	Types          []choiceView         `json:"types"`
	Questions      []questionView       `json:"questions,omitempty"`
	Errors         map[string]string    `json:"errors"`
	FormErrors     []string             `json:"form_errors,omitempty"`
	Preview        bool                 `json:"preview"`
	Hidden         []render.HiddenField `json:"hidden,omitempty"`
}

func buildFormView(state form.State) formView {
	d := state.Draft
	v := formView{
		Title:          d.Title,
		RecipientEmail: d.RecipientEmail,
		QuestionType:   string(d.Type()),
		InputMode:      string(d.Mode()),
		QuestionCount:  d.QuestionCount,
		MultipleChoice: d.Type() == draft.MultipleChoice,
		FileMode:       d.Mode() == draft.FileImport,
		Errors:         map[string]string{},
		FormErrors:     state.FormErrors,
		Preview:        state.Preview,
	}
	for _, t := range []draft.QuestionType{draft.ShortAnswer, draft.MultipleChoice} {
		v.Types = append(v.Types, choiceView{Value: string(t), Label: t.Label(), Selected: t == d.Type()})
	}
	for _, key := range []draft.FieldKey{draft.TitleKey(), draft.EmailKey(), draft.QuestionCountKey(), draft.QuestionsFileKey()} {
		if msg := state.Error(key); msg != "" {
			v.Errors[key.Path()] = msg
		}
	}
	var carried []render.HiddenField
	if d.HasFile() {
		v.FileName = d.File.Name
		carried = render.FileFields(d.File.Name, d.File.Content)
	}
	previewFlag := "0"
	if state.Preview {
		previewFlag = "1"
	}
	v.Hidden = render.SortedHiddenFields(render.MergeHiddenFields(map[string]string{
		fieldPrevType:  string(d.Type()),
		fieldPrevMode:  string(d.Mode()),
		fieldPrevCount: d.QuestionCount,
		fieldPreview:   previewFlag,
	}, carried...))
	for i, q := range d.Questions {
		qv := questionView{
			Index:        i,
			Number:       i + 1,
			Name:         questionField(i),
			Text:         q.Text,
			Error:        state.Error(draft.QuestionTextKey(i)),
			OptionsError: state.Error(draft.DuplicateOptionsKey(i)),
			CanRemove:    len(q.Options) > 2,
		}
		for j, opt := range q.Options {
			qv.Options = append(qv.Options, optionView{
				Index:  j,
				Number: j + 1,
				Name:   optionField(i, j),
				Value:  opt,
				Error:  state.Error(draft.OptionKey(i, j)),
			})
		}
		v.Questions = append(v.Questions, qv)
	}
	return v
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, f *form.Form) {
	state := f.Snapshot()
	data := map[string]any{"form": buildFormView(state)}
	if state.Preview {
		out, err := s.renderPreview(r.Context(), "html", preview.Build(state.Draft))
		if err != nil {
			s.logger.Error("render preview", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		data["preview_html"] = string(out)
	}
	s.render(w, r, status, "new", data)
}

func (s *Server) renderPreview(ctx context.Context, name string, view preview.View) ([]byte, error) {
	renderer, err := s.previews.Get(name)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, view, render.RenderOptions{})
}

// previewOptions passes theme tokens to standalone previews.
func (s *Server) previewOptions() render.RenderOptions {
	sel, err := s.themes.Select(s.themeName, s.variant)
	if err != nil {
		return render.RenderOptions{}
	}
	th := resolveTheme(sel)
	return render.RenderOptions{Tokens: th.Tokens, Stylesheet: th.Stylesheet}
}
