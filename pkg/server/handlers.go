package server

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nikogura/learning-designer/pkg/curriculum"
	"github.com/nikogura/learning-designer/pkg/renderer"
	"github.com/nikogura/learning-designer/pkg/session"
	"github.com/pkg/errors"
)

// intakeRequest is the JSON form of the intake page. ProjectURL is fetched
// when no narrative text is given.
type intakeRequest struct {
	curriculum.RawInputs
	ProjectURL string `json:"project_url"`
}

type regenerateRequest struct {
	Feedback string `json:"feedback"`
}

// intake runs extraction and gap analysis and starts a fresh session.
func (s *Server) intake(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxUploadBytes)

	req, err := s.readIntake(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	raw := req.RawInputs
	if strings.TrimSpace(raw.Project.ProjectNarrative) == "" && req.ProjectURL != "" {
		raw.Project.ProjectNarrative, err = s.fetchNarrative(c, req.ProjectURL)
		if err != nil {
			s.fail(c, err)
			return
		}
	}

	raw.Institution.ApplyDefaults()
	err = raw.Validate()
	if err != nil {
		s.fail(c, err)
		return
	}

	analysis, err := curriculum.Analyze(c.Request.Context(), s.extractor, raw)
	if err != nil {
		s.fail(c, err)
		return
	}

	// a new intake always starts over
	if previous, prevErr := s.loadSession(c); prevErr == nil {
		s.discardSession(c, previous.ID)
	}

	sess := session.New(s.now())
	sess.Raw = raw
	sess.Analysis = &analysis

	err = s.saveSession(c, &sess)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info("intake analyzed", "session", sess.ID, "term_weeks", raw.Institution.TermLengthWeeks)

	c.JSON(http.StatusOK, gin.H{
		"session":   sess,
		"suggested": curriculum.Confirm(raw, analysis),
	})
}

// readIntake accepts either the multipart intake form or a JSON document.
func (s *Server) readIntake(c *gin.Context) (req intakeRequest, err error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		err = c.ShouldBindJSON(&req)
		if err != nil {
			err = errors.Wrapf(curriculum.ErrValidation, "invalid intake body: %s", err)
			return req, err
		}
		return req, err
	}

	form, err := c.MultipartForm()
	if err != nil {
		err = errors.Wrapf(curriculum.ErrValidation, "invalid intake form: %s", err)
		return req, err
	}

	req = intakeFromForm(form.Value)

	if req.RawInputs.Institution.TermLengthWeeks, err = formInt(form.Value, "term_length_weeks"); err != nil {
		return req, err
	}

	files := form.File["resume_file"]
	if len(files) > 0 && files[0].Filename != "" {
		req.RawInputs.Learner.ResumeText, err = s.readResume(c, files[0])
		if err != nil {
			return req, err
		}
	}

	return req, err
}

func intakeFromForm(values map[string][]string) (req intakeRequest) {
	get := func(key string) (v string) {
		if list := values[key]; len(list) > 0 {
			v = strings.TrimSpace(list[0])
		}
		return v
	}

	req.RawInputs = curriculum.RawInputs{
		Learner: curriculum.LearnerInput{
			LearnerName:         get("learner_name"),
			AcademicLevel:       get("academic_level"),
			MajorOrProgram:      get("major_or_program"),
			ResumeText:          get("resume_text"),
			CareerGoals:         get("career_goals"),
			SkillsToDevelop:     get("skills_to_develop"),
			LearningPreferences: values["learning_preferences"],
		},
		Project: curriculum.ProjectInput{
			CompanyName:      get("company_name"),
			Industry:         get("industry"),
			ProjectTitle:     get("project_title"),
			ProjectNarrative: get("project_narrative"),
			MentorshipLevel:  get("mentorship_level"),
			TeamSize:         get("team_size"),
		},
		Institution: curriculum.Institution{
			CreditHours:         get("credit_hours"),
			HoursPerWeek:        get("hours_per_week"),
			InstitutionName:     get("institution_name"),
			GradingScale:        get("grading_scale"),
			CompetencyFramework: values["competency_framework"],
			FixedObjectives:     values["fixed_objectives"],
		},
	}
	req.ProjectURL = get("project_url")

	return req
}

func formInt(values map[string][]string, key string) (n int, err error) {
	list := values[key]
	if len(list) == 0 || strings.TrimSpace(list[0]) == "" {
		return n, err
	}

	n, err = strconv.Atoi(strings.TrimSpace(list[0]))
	if err != nil {
		err = errors.Wrapf(curriculum.ErrValidation, "%s must be a whole number", key)
		return n, err
	}
	return n, err
}

func (s *Server) readResume(c *gin.Context, header *multipart.FileHeader) (text string, err error) {
	if s.text == nil {
		err = errors.Wrap(curriculum.ErrValidation, "file uploads are not supported, paste the resume text instead")
		return text, err
	}

	f, err := header.Open()
	if err != nil {
		err = errors.Wrapf(curriculum.ErrValidation, "could not open uploaded file: %s", err)
		return text, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		err = errors.Wrap(err, "failed to read uploaded file")
		return text, err
	}

	text, err = s.text.ExtractText(c.Request.Context(), header.Filename, data)
	return text, err
}

// fetchNarrative downloads a narrative. Only http(s) URLs are accepted so the
// server never reads its own file system on behalf of a client.
func (s *Server) fetchNarrative(c *gin.Context, rawURL string) (narrative string, err error) {
	u, parseErr := url.Parse(rawURL)
	if parseErr != nil || (u.Scheme != "http" && u.Scheme != "https") {
		err = errors.Wrap(curriculum.ErrValidation, "project_url must be an http or https URL")
		return narrative, err
	}

	if s.fetch == nil {
		err = errors.Wrap(curriculum.ErrValidation, "fetching narratives by URL is not supported")
		return narrative, err
	}

	narrative, err = s.fetch(c.Request.Context(), rawURL)
	if err != nil {
		err = errors.Wrapf(curriculum.ErrValidation, "could not fetch the project narrative: %s", err)
		return narrative, err
	}

	return narrative, err
}

// getSession returns everything stored so far, with suggested confirmed data
// when nothing has been confirmed yet.
func (s *Server) getSession(c *gin.Context) {
	sess, err := s.loadSession(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	body := gin.H{"session": sess}
	if sess.Confirmed == nil && sess.Analysis != nil {
		body["suggested"] = curriculum.Confirm(sess.Raw, *sess.Analysis)
	}

	c.JSON(http.StatusOK, body)
}

// confirm stores the reviewed data. An empty body accepts the suggestions.
func (s *Server) confirm(c *gin.Context) {
	sess, err := s.loadSession(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	var confirmed curriculum.ConfirmedData
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.fail(c, errors.Wrap(err, "failed to read request body"))
		return
	}

	if strings.TrimSpace(string(body)) == "" {
		if sess.Analysis == nil {
			s.fail(c, errors.Wrap(curriculum.ErrStageOrder, "run the intake before confirming"))
			return
		}
		confirmed = curriculum.Confirm(sess.Raw, *sess.Analysis)
	} else {
		err = json.Unmarshal(body, &confirmed)
		if err != nil {
			s.fail(c, errors.Wrapf(curriculum.ErrValidation, "invalid confirmation body: %s", err))
			return
		}
		if confirmed.Institution.TermLengthWeeks == 0 && confirmed.Institution.CreditHours == "" {
			confirmed.Institution = sess.Raw.Institution
		}
	}

	confirmed.Institution.ApplyDefaults()
	err = confirmed.Validate()
	if err != nil {
		s.fail(c, err)
		return
	}

	sess.Confirmed = &confirmed
	err = s.saveSession(c, &sess)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"confirmed": confirmed, "build": sess.Build})
}

// buildStep loads the session, applies op to it and saves it only when op succeeds.
func (s *Server) buildStep(c *gin.Context, op func(sess *session.Session) error) (sess session.Session, ok bool) {
	sess, err := s.loadSession(c)
	if err != nil {
		s.fail(c, err)
		return sess, ok
	}

	err = op(&sess)
	if err != nil {
		s.fail(c, err)
		return sess, ok
	}

	// A reopened build no longer matches the last rendered document.
	if sess.Build.Step != curriculum.StepFinalized {
		sess.Document = ""
	}

	err = s.saveSession(c, &sess)
	if err != nil {
		s.fail(c, err)
		return sess, ok
	}

	ok = true
	return sess, ok
}

func (s *Server) generateObjectives(c *gin.Context) {
	sess, ok := s.buildStep(c, func(sess *session.Session) error {
		return s.builder.GenerateObjectives(c.Request.Context(), sess.Confirmed, &sess.Build)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"objectives":          sess.Build.Objectives,
		"assessment_strategy": sess.Build.Assessment,
		"build":               sess.Build,
	})
}

func (s *Server) generateOutline(c *gin.Context) {
	sess, ok := s.buildStep(c, func(sess *session.Session) error {
		return s.builder.GenerateOutline(c.Request.Context(), sess.Confirmed, &sess.Build)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"outline": sess.Build.Outline, "build": sess.Build})
}

func (s *Server) generateWeek(c *gin.Context) {
	n, err := weekParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	sess, ok := s.buildStep(c, func(sess *session.Session) error {
		return s.builder.GenerateWeek(c.Request.Context(), sess.Confirmed, &sess.Build, n)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"week": sess.Build.Weeks[n], "build": sess.Build})
}

func (s *Server) regenerateWeek(c *gin.Context) {
	n, err := weekParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	var req regenerateRequest
	err = c.ShouldBindJSON(&req)
	if err != nil {
		s.fail(c, errors.Wrapf(curriculum.ErrValidation, "invalid regenerate body: %s", err))
		return
	}

	sess, ok := s.buildStep(c, func(sess *session.Session) error {
		return s.builder.RegenerateWeek(c.Request.Context(), sess.Confirmed, &sess.Build, n, req.Feedback)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"week": sess.Build.Weeks[n], "build": sess.Build})
}

func (s *Server) saveStep(c *gin.Context) {
	stage := curriculum.Stage(c.Param("stage"))

	var content curriculum.StepContent
	err := c.ShouldBindJSON(&content)
	if err != nil {
		s.fail(c, errors.Wrapf(curriculum.ErrValidation, "invalid step body: %s", err))
		return
	}

	sess, ok := s.buildStep(c, func(sess *session.Session) error {
		return s.builder.SaveStep(sess.Confirmed, &sess.Build, stage, content)
	})
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"build": sess.Build})
}

func (s *Server) finalize(c *gin.Context) {
	sess, ok := s.buildStep(c, func(sess *session.Session) (err error) {
		sess.Document, err = s.builder.Finalize(sess.Confirmed, &sess.Build)
		return err
	})
	if !ok {
		return
	}

	html := ""
	if s.documents != nil {
		var err error
		html, err = s.documents.ToHTML(c.Request.Context(), sess.Document)
		if err != nil {
			s.logger.Warn("HTML preview unavailable", "error", err.Error())
			html = ""
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"markdown": sess.Document,
		"html":     html,
		"toc":      renderer.TableOfContents(sess.Document),
		"filename": renderer.DownloadFilename(*sess.Confirmed, "md"),
		"build":    sess.Build,
	})
}

// download sends the finalized document and discards the session.
func (s *Server) download(c *gin.Context) {
	sess, err := s.loadSession(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	if sess.Build.Step != curriculum.StepFinalized || sess.Document == "" || sess.Confirmed == nil {
		s.fail(c, errors.Wrap(curriculum.ErrStageOrder, "finalize the curriculum before downloading"))
		return
	}

	format := c.DefaultQuery("format", "md")

	var (
		data        []byte
		contentType string
	)

	switch format {
	case "md":
		data = []byte(sess.Document)
		contentType = "text/markdown; charset=utf-8"
	case "docx":
		if s.documents == nil {
			s.fail(c, renderer.ErrPandocMissing)
			return
		}
		data, err = s.documents.DOCX(c.Request.Context(), sess.Document)
		if err != nil {
			s.fail(c, err)
			return
		}
		contentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		s.fail(c, errors.Wrapf(curriculum.ErrValidation, "unsupported format %q, use md or docx", format))
		return
	}

	filename := renderer.DownloadFilename(*sess.Confirmed, format)
	s.discardSession(c, sess.ID)

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func weekParam(c *gin.Context) (n int, err error) {
	n, err = strconv.Atoi(c.Param("week"))
	if err != nil {
		err = errors.Wrapf(curriculum.ErrValidation, "week must be a number, got %q", c.Param("week"))
		return n, err
	}
	return n, err
}
