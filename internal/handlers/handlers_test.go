package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"alfredoptarigan/resume-screener/internal/githubstats"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/scoring"
	"alfredoptarigan/resume-screener/internal/services"
)

const criteriaReply = `{
  "role_summary": "Backend engineer",
  "seniority": "mid",
  "total_criteria": 2,
  "criteria": [
    {"id": "go", "name": "Go", "question": "Has the candidate shipped Go services?", "weight": 0.6},
    {"id": "oss", "name": "OSS", "question": "Does the candidate contribute to open source?", "weight": 0.4}
  ]
}`

type stubLLM struct {
	reply string
	err   error
}

func (s stubLLM) GenerateEmbedding(context.Context, string) ([]float32, error) {
	return []float32{1}, nil
}

func (s stubLLM) GenerateJSON(context.Context, string, float32) (string, error) {
	return s.reply, s.err
}

type fakeWorker struct {
	mu     sync.Mutex
	queued []uuid.UUID
}

func (w *fakeWorker) Start(context.Context) {}
func (w *fakeWorker) Stop()                 {}

func (w *fakeWorker) EnqueueJob(id uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.queued = append(w.queued, id)
}

type fakeAnalyzer struct {
	in     services.AnalyzeInput
	report *models.ScreeningReport
}

func (f *fakeAnalyzer) Analyze(_ context.Context, in services.AnalyzeInput) (*models.ScreeningReport, error) {
	f.in = in
	f.report.RunID = in.RunID
	return f.report, nil
}

type fakeLookup map[string]githubstats.Result

func (f fakeLookup) Lookup(_ context.Context, profileURL string) githubstats.Result {
	if res, ok := f[profileURL]; ok {
		return res
	}
	return githubstats.Result{Outcome: githubstats.OutcomeNotFound}
}

type fixture struct {
	app       *fiber.App
	mem       *repositories.Memory
	worker    *fakeWorker
	analyzer  *fakeAnalyzer
	artifacts *services.ArtifactStore
}

func newFixture(t *testing.T, llm stubLLM) *fixture {
	t.Helper()

	mem := repositories.NewMemory()
	artifacts := services.NewArtifactStore(t.TempDir())
	criteria := services.NewCriteriaService(llm, mem.Criteria(), artifacts, nil, nil)
	worker := &fakeWorker{}
	analyzer := &fakeAnalyzer{report: &models.ScreeningReport{
		TotalProcessed: 1,
		Ranked: []models.CandidateResult{{
			ResumeID:      "r1",
			FileName:      "jane_doe.txt",
			Status:        models.ResultScored,
			Group:         scoring.GroupStronglyConsider,
			Reason:        "Meets every criterion",
			YesCount:      2,
			TotalCriteria: 2,
			WeightedScore: 1,
		}},
	}}

	h := Handlers{
		Criteria: NewCriteriaHandler(criteria, 6, models.SeniorityMid),
		Screening: NewScreeningHandler(ScreeningHandlerDeps{
			Runs:        mem.Screenings(),
			Documents:   mem.Documents(),
			Criteria:    criteria,
			Storage:     services.NewStorageService(t.TempDir(), 1<<20),
			Worker:      worker,
			Export:      services.NewExportService(),
			MaxFileSize: 1 << 20,
		}),
		Rank: NewRankHandler(RankHandlerDeps{
			Criteria:    criteria,
			Screening:   analyzer,
			Artifacts:   artifacts,
			Count:       6,
			Seniority:   models.SeniorityMid,
			MaxFileSize: 1 << 20,
		}),
		Profile: NewProfileHandler(fakeLookup{
			"https://github.com/alicedev": {
				Outcome: githubstats.OutcomeFound,
				Stats:   githubstats.Stats{Username: "alicedev", PublicRepos: 12, Followers: 40},
			},
			"https://github.com/flaky": {Outcome: githubstats.OutcomeUpstreamError},
		}),
		Artifact: NewArtifactHandler(artifacts),
	}

	return &fixture{
		app:       NewApp(AppConfig{Name: "test", Version: "0.0.0"}, h),
		mem:       mem,
		worker:    worker,
		analyzer:  analyzer,
		artifacts: artifacts,
	}
}

func (f *fixture) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

type formFile struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		w, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = w.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(fiber.HeaderContentType, mw.FormDataContentType())
	return req
}

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func errorBody(t *testing.T, body []byte) (string, int) {
	t.Helper()
	var out struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	return out.Error, out.Code
}

func finalizedSet(t *testing.T, f *fixture) *models.CriteriaSet {
	t.Helper()
	set := &models.CriteriaSet{
		JobDescription: "Go engineer",
		Finalized:      true,
		Doc: models.QuestionsDoc{
			TotalCriteria: 1,
			Criteria:      []models.Criterion{{ID: "go", Name: "Go", Question: "Go?", Weight: 1}},
		},
	}
	require.NoError(t, f.mem.Criteria().Create(set))
	return set
}

func TestHealth(t *testing.T) {
	f := newFixture(t, stubLLM{})

	resp, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"healthy"`)
}

func TestCriteriaGenerateAndFinalize(t *testing.T) {
	f := newFixture(t, stubLLM{reply: criteriaReply})

	resp, body := f.do(t, jsonRequest(http.MethodPost, "/api/v1/criteria/generate",
		`{"job_description": "Build Go services", "count": 5}`))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))

	var draft models.CriteriaSet
	require.NoError(t, json.Unmarshal(body, &draft))
	assert.False(t, draft.Finalized)
	assert.Len(t, draft.Doc.Criteria, 2)

	resp, body = f.do(t, jsonRequest(http.MethodPost, "/api/v1/criteria/"+draft.ID.String()+"/finalize",
		`{"selected": ["go"], "custom": [{"question": "Has the candidate mentored engineers?", "weight": 0.5}]}`))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))

	var final models.CriteriaSet
	require.NoError(t, json.Unmarshal(body, &final))
	assert.True(t, final.Finalized)
	require.NotNil(t, final.ParentID)
	assert.Equal(t, draft.ID, *final.ParentID)
	assert.Len(t, final.Doc.Criteria, 2)
	assert.NotEmpty(t, final.ArtifactName)

	resp, _ = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/criteria/"+final.ID.String(), nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/criteria?limit=1", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var listed struct {
		CriteriaSets []models.CriteriaSet `json:"criteria_sets"`
		Count        int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &listed))
	assert.Equal(t, 1, listed.Count)
	require.Len(t, listed.CriteriaSets, 1)
}

func TestCriteriaErrors(t *testing.T) {
	f := newFixture(t, stubLLM{reply: "not json at all"})

	resp, body := f.do(t, jsonRequest(http.MethodPost, "/api/v1/criteria/generate", `{"count": 5}`))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	msg, code := errorBody(t, body)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, msg, "JobDescription")

	resp, _ = f.do(t, jsonRequest(http.MethodPost, "/api/v1/criteria/generate",
		`{"job_description": "Go", "count": 20}`))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, jsonRequest(http.MethodPost, "/api/v1/criteria/generate", `{"job_description": "Go"}`))
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	resp, _ = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/criteria?limit=500", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/criteria/not-a-uuid", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/criteria/"+uuid.NewString(), nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestScreeningCreateQueuesRun(t *testing.T) {
	f := newFixture(t, stubLLM{})
	set := finalizedSet(t, f)

	req := multipartRequest(t, "/api/v1/screenings",
		map[string]string{"criteria_id": set.ID.String(), "github_required": "true"},
		formFile{"resumes", "jane_doe.txt", []byte("Jane Doe, Go engineer")},
		formFile{"resumes", "batch.zip", zipOf(t, map[string]string{"john_smith.txt": "John Smith"})},
	)
	resp, body := f.do(t, req)
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode, string(body))

	var created models.ScreeningResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, string(models.StatusQueued), created.Status)
	assert.Equal(t, 2, created.Files)

	id := uuid.MustParse(created.ID)
	assert.Equal(t, []uuid.UUID{id}, f.worker.queued)

	run, err := f.mem.Screenings().FindByID(id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusQueued, run.Status)
	assert.True(t, run.GitHubRequired)
	assert.Equal(t, "Go engineer", run.JobDescription)

	docs, err := f.mem.Documents().FindByRunID(id)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	resp, _ = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/screenings/"+created.ID+"/export", nil))
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestScreeningCreateRejectsBadInput(t *testing.T) {
	f := newFixture(t, stubLLM{})
	set := finalizedSet(t, f)

	draft := &models.CriteriaSet{Doc: set.Doc}
	require.NoError(t, f.mem.Criteria().Create(draft))

	cases := map[string]struct {
		fields map[string]string
		files  []formFile
		status int
	}{
		"missing criteria": {
			fields: map[string]string{},
			files:  []formFile{{"resumes", "a.txt", []byte("a")}},
			status: fiber.StatusBadRequest,
		},
		"draft criteria": {
			fields: map[string]string{"criteria_id": draft.ID.String()},
			files:  []formFile{{"resumes", "a.txt", []byte("a")}},
			status: fiber.StatusBadRequest,
		},
		"unknown criteria": {
			fields: map[string]string{"criteria_id": uuid.NewString()},
			files:  []formFile{{"resumes", "a.txt", []byte("a")}},
			status: fiber.StatusNotFound,
		},
		"unsupported file": {
			fields: map[string]string{"criteria_id": set.ID.String()},
			files:  []formFile{{"resumes", "a.exe", []byte("a")}},
			status: fiber.StatusBadRequest,
		},
		"no files": {
			fields: map[string]string{"criteria_id": set.ID.String()},
			status: fiber.StatusBadRequest,
		},
		"bad github flag": {
			fields: map[string]string{"criteria_id": set.ID.String(), "github_required": "maybe"},
			files:  []formFile{{"resumes", "a.txt", []byte("a")}},
			status: fiber.StatusBadRequest,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp, body := f.do(t, multipartRequest(t, "/api/v1/screenings", tc.fields, tc.files...))
			assert.Equal(t, tc.status, resp.StatusCode, string(body))
		})
	}
	assert.Empty(t, f.worker.queued)
}

func TestScreeningGetCompletedAndExport(t *testing.T) {
	f := newFixture(t, stubLLM{})
	set := finalizedSet(t, f)

	run := &models.ScreeningRun{CriteriaSetID: set.ID, Status: models.StatusProcessing}
	require.NoError(t, f.mem.Screenings().Create(run))
	require.NoError(t, f.mem.Screenings().SaveResults(run.ID, []models.CandidateResult{
		{ResumeID: "r1", FileName: "jane.txt", Status: models.ResultScored, Group: scoring.GroupPotentialFit, TotalCriteria: 1},
		{ResumeID: "r2", FileName: "john.txt", Status: models.ResultUnscored, Reason: services.ReasonUnscored},
	}, ""))

	resp, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/screenings/"+run.ID.String(), nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got models.ScreeningResultResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, string(models.StatusCompleted), got.Status)
	require.NotNil(t, got.Report)
	assert.Equal(t, 2, got.Report.TotalProcessed)
	assert.Len(t, got.Report.Ranked, 1)
	assert.Len(t, got.Report.Unscored, 1)

	resp, body = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/screenings/"+run.ID.String()+"/export", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), run.ID.String())
	assert.Equal(t, []byte("PK"), body[:2])
}

func TestScreeningGetFailed(t *testing.T) {
	f := newFixture(t, stubLLM{})
	run := &models.ScreeningRun{CriteriaSetID: uuid.New()}
	require.NoError(t, f.mem.Screenings().Create(run))
	require.NoError(t, f.mem.Screenings().UpdateError(run.ID, "gemini unavailable"))

	resp, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/screenings/"+run.ID.String(), nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got models.ScreeningResultResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, string(models.StatusFailed), got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "gemini unavailable", *got.ErrorMessage)
	assert.Nil(t, got.Report)
}

func TestRankResumes(t *testing.T) {
	f := newFixture(t, stubLLM{reply: criteriaReply})

	req := multipartRequest(t, "/api/v1/rank-resumes",
		map[string]string{"job_description": "Build Go services", "github_required": "false"},
		formFile{"resume_file", "resumes.zip", zipOf(t, map[string]string{
			"jane_doe.txt":        "Jane Doe",
			"__MACOSX/._jane.txt": "junk",
		})},
	)
	resp, body := f.do(t, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var got models.RankingResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.RankedCandidates, 1)
	assert.Equal(t, "Strongly Consider", got.RankedCandidates[0].Group)
	assert.Equal(t, 1, got.TotalProcessed)

	require.Len(t, f.analyzer.in.Resumes, 1)
	assert.Equal(t, "jane_doe.txt", f.analyzer.in.Resumes[0].FileName)
	assert.Len(t, f.analyzer.in.Criteria, 2)

	names, err := f.artifacts.List(services.ArtifactResults)
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestRankResumesValidation(t *testing.T) {
	f := newFixture(t, stubLLM{reply: criteriaReply})

	resp, _ := f.do(t, multipartRequest(t, "/api/v1/rank-resumes",
		map[string]string{},
		formFile{"resume_file", "r.zip", zipOf(t, map[string]string{"a.txt": "a"})}))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, multipartRequest(t, "/api/v1/rank-resumes",
		map[string]string{"job_description": "Go"}))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, multipartRequest(t, "/api/v1/rank-resumes",
		map[string]string{"job_description": "Go"},
		formFile{"resume_file", "resume.pdf", []byte("%PDF-1.4")}))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, multipartRequest(t, "/api/v1/rank-resumes",
		map[string]string{"job_description": "Go"},
		formFile{"resume_file", "empty.zip", zipOf(t, map[string]string{"notes.md": "x"})}))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestExtractIdentifiers(t *testing.T) {
	f := newFixture(t, stubLLM{})

	resp, body := f.do(t, jsonRequest(http.MethodPost, "/api/v1/identifiers/extract",
		`{"text": "See github.com/alicedev and linkedin.com/in/alice-dev"}`))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var got models.IdentifiersResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Identifiers, 2)
	assert.Equal(t, "alicedev", got.Identifiers[0].Username)
	assert.Equal(t, "alice-dev", got.Identifiers[1].Username)

	resp, body = f.do(t, jsonRequest(http.MethodPost, "/api/v1/identifiers/extract",
		`{"platform": "github", "links": ["https://github.com/alicedev"]}`))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Identifiers, 1)

	resp, _ = f.do(t, jsonRequest(http.MethodPost, "/api/v1/identifiers/extract", `{}`))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, jsonRequest(http.MethodPost, "/api/v1/identifiers/extract",
		`{"platform": "gitlab", "text": "x"}`))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGitHubProfile(t *testing.T) {
	f := newFixture(t, stubLLM{})

	resp, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/github/alicedev", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got models.GitHubProfileResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 12, got.Stats.PublicRepos)
	assert.Greater(t, got.Reputation, 0.0)

	resp, _ = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/github/nobody", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/github/flaky", nil))
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	resp, _ = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/github/-bad-", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestArtifacts(t *testing.T) {
	f := newFixture(t, stubLLM{})

	name, err := f.artifacts.SaveResults(&models.ScreeningReport{GeneratedAt: time.Now()})
	require.NoError(t, err)

	resp, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/artifacts?kind=results", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list models.ArtifactListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, []string{name}, list.Artifacts)

	resp, _ = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/artifacts?kind=secrets", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/artifacts/"+name, nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, json.Valid(body))

	resp, _ = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/artifacts/passwd", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/artifacts/results_20200101T000000Z.json", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, errorStatus(services.ErrFileTooLarge))
	assert.Equal(t, fiber.StatusGatewayTimeout, errorStatus(services.ErrLLMTimeout))
	assert.Equal(t, fiber.StatusTooManyRequests, errorStatus(&services.LLMError{Status: 429}))
	assert.Equal(t, fiber.StatusBadGateway, errorStatus(&services.LLMError{Status: 500}))
	assert.Equal(t, fiber.StatusInternalServerError, errorStatus(io.ErrUnexpectedEOF))
}

func TestErrorHandlerLogsServerErrors(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(zap.New(core))})
	app.Get("/boom", func(*fiber.Ctx) error { return io.ErrUnexpectedEOF })
	app.Get("/missing", func(*fiber.Ctx) error { return repositories.ErrNotFound })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Zero(t, logs.Len())

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	entries := logs.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/boom", entries[0].ContextMap()["path"])
	assert.EqualValues(t, fiber.StatusInternalServerError, entries[0].ContextMap()["status"])
}
