package dashboard

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/csvdash/internal/ai"
	"github.com/KaramelBytes/csvdash/internal/table"
)

func init() { gin.SetMode(gin.TestMode) }

type stubRuntime struct {
	calls int
	text  string
	err   error
}

func (s *stubRuntime) Generate(_ context.Context, _ ai.GenerateRequest) (*ai.GenerateResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &ai.GenerateResponse{Choices: []ai.Choice{{Message: ai.Message{Role: "assistant", Content: s.text}}}}, nil
}

// browser carries the session cookie between requests.
type browser struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rec := httptest.NewRecorder()
	b.h.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			b.cookie = c
		}
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) upload(name, content string) *httptest.ResponseRecorder {
	b.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		b.t.Fatal(err)
	}
	fw.Write([]byte(content))
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return b.do(req)
}

func newTestServer(t *testing.T, rt ai.Runtime) http.Handler {
	t.Helper()
	s, err := NewServer(ai.NewAssistantWithRuntime(rt, 0), NewSessions(time.Minute), ServerOptions{PreviewRows: 5})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s.Handler()
}

func TestIndexPromptsForUpload(t *testing.T) {
	b := &browser{t: t, h: newTestServer(t, &stubRuntime{})}
	rec := b.get("/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Please upload a CSV file to get started.") {
		t.Fatalf("missing upload prompt:\n%s", rec.Body.String())
	}
	if b.cookie == nil {
		t.Fatalf("session cookie not set")
	}
}

func TestUploadSummaryFilterChartDownload(t *testing.T) {
	b := &browser{t: t, h: newTestServer(t, &stubRuntime{})}
	if rec := b.upload("scores.csv", scores); rec.Code != http.StatusSeeOther {
		t.Fatalf("upload status = %d body=%s", rec.Code, rec.Body.String())
	}

	page := b.get("/").Body.String()
	for _, want := range []string{"File uploaded successfully: scores.csv", "3 rows × 2 columns", "score <small>(numeric)</small>"} {
		if !strings.Contains(page, want) {
			t.Fatalf("page missing %q:\n%s", want, page)
		}
	}

	page = b.get("/?column=name&keyword=a").Body.String()
	if !strings.Contains(page, "Showing results for 'a' in 'name' (1 rows)") {
		t.Fatalf("filter caption missing:\n%s", page)
	}

	rec := b.get("/chart?kind=bar&x=name&y=score")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("chart status=%d type=%q body=%s", rec.Code, rec.Header().Get("Content-Type"), rec.Body.String())
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("chart is not a PNG")
	}
	if rec := b.get("/chart?kind=bar&x=name&y=name"); rec.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric y should be rejected, got %d", rec.Code)
	}

	rec = b.get("/download")
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, DownloadName) {
		t.Fatalf("content disposition = %q", cd)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("content type = %q", rec.Header().Get("Content-Type"))
	}
	again, err := table.Load(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("re-parse download: %v", err)
	}
	orig := load(t, scores)
	if !reflect.DeepEqual(again.Header(), orig.Header()) || !reflect.DeepEqual(again.Records(), orig.Records()) {
		t.Fatalf("download does not round-trip: %v", again.Records())
	}
}

func TestHeatmapFormCarriesAxisSelections(t *testing.T) {
	b := &browser{t: t, h: newTestServer(t, &stubRuntime{})}
	b.upload("scores.csv", scores)
	page := b.get("/?kind=heatmap&x=score&y=score").Body.String()
	for _, want := range []string{`<input type="hidden" name="x" value="score">`, `<input type="hidden" name="y" value="score">`} {
		// once in the chart form, once in each AI form
		if n := strings.Count(page, want); n != 3 {
			t.Fatalf("found %s %d times, want 3:\n%s", want, n, page)
		}
	}
	if strings.Contains(page, `<select name="x"`) {
		t.Fatalf("heatmap form should not show the x selector")
	}
}

func TestFailedUploadDropsTable(t *testing.T) {
	b := &browser{t: t, h: newTestServer(t, &stubRuntime{})}
	b.upload("good.csv", scores)
	rec := b.upload("bad.csv", "a,b\n1,2,3\n")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Error reading CSV:") {
		t.Fatalf("error message missing:\n%s", rec.Body.String())
	}
	if rec := b.get("/download"); rec.Code != http.StatusNotFound {
		t.Fatalf("stale table still served after failed upload: %d", rec.Code)
	}
	if rec := b.upload("empty.csv", ""); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty upload status = %d", rec.Code)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	h := newTestServer(t, &stubRuntime{})
	alice := &browser{t: t, h: h}
	bob := &browser{t: t, h: h}
	alice.upload("scores.csv", scores)
	if rec := bob.get("/download"); rec.Code != http.StatusNotFound {
		t.Fatalf("second browser sees first browser's table: %d", rec.Code)
	}
	if rec := alice.get("/download"); rec.Code != http.StatusOK {
		t.Fatalf("first browser lost its table: %d", rec.Code)
	}
}

func TestInsightsOutcomes(t *testing.T) {
	rt := &stubRuntime{text: "Scores rise steadily."}
	b := &browser{t: t, h: newTestServer(t, rt)}
	b.upload("scores.csv", scores)

	page := b.post("/insights", url.Values{"kind": {"pie"}}).Body.String()
	if !strings.Contains(page, "AI Insights Generated") || !strings.Contains(page, "Scores rise steadily.") {
		t.Fatalf("insights missing:\n%s", page)
	}
	if !strings.Contains(page, `<option value="pie" selected>`) {
		t.Fatalf("selections not preserved across AI request")
	}

	rt.err = errors.New("boom")
	page = b.post("/insights", nil).Body.String()
	if !strings.Contains(page, "Error generating insights: ") || !strings.Contains(page, "boom") {
		t.Fatalf("failure not reported:\n%s", page)
	}
	if !strings.Contains(page, "3 rows × 2 columns") {
		t.Fatalf("dashboard content lost after AI failure")
	}
}

func TestAskOutcomes(t *testing.T) {
	rt := &stubRuntime{text: "The max score is 3."}
	b := &browser{t: t, h: newTestServer(t, rt)}
	b.upload("scores.csv", scores)

	page := b.post("/ask", url.Values{"question": {"  "}}).Body.String()
	if !strings.Contains(page, "Please enter a question before clicking Ask AI.") {
		t.Fatalf("blank question warning missing:\n%s", page)
	}
	if rt.calls != 0 {
		t.Fatalf("blank question reached the model")
	}

	page = b.post("/ask", url.Values{"question": {"What is the max score?"}}).Body.String()
	if !strings.Contains(page, "Answer from AI") || !strings.Contains(page, "The max score is 3.") {
		t.Fatalf("answer missing:\n%s", page)
	}

	rt.err = errors.New("rate limited")
	page = b.post("/ask", url.Values{"question": {"again?"}}).Body.String()
	if !strings.Contains(page, "Error generating answer: ") {
		t.Fatalf("failure not reported:\n%s", page)
	}
}

func TestAIFailureGuidance(t *testing.T) {
	rt := &stubRuntime{err: &ai.BusyError{APIError: &ai.APIError{StatusCode: http.StatusTooManyRequests}, Wait: 7 * time.Second}}
	b := &browser{t: t, h: newTestServer(t, rt)}
	b.upload("scores.csv", scores)

	page := b.post("/insights", nil).Body.String()
	if !strings.Contains(page, "The AI service is busy; try again in 7s.") || !strings.Contains(page, `class="note warning"`) {
		t.Fatalf("rate limit should render as a warning with the wait:\n%s", page)
	}

	rt.err = &ai.KeyRejectedError{APIError: &ai.APIError{StatusCode: http.StatusUnauthorized}}
	page = b.post("/ask", url.Values{"question": {"max?"}}).Body.String()
	if !strings.Contains(page, "Error generating answer: the AI service rejected the configured API key") || !strings.Contains(page, "GROQ_API_KEY") {
		t.Fatalf("rejected key should point at GROQ_API_KEY:\n%s", page)
	}
}

func TestAIRequiresTable(t *testing.T) {
	rt := &stubRuntime{text: "x"}
	b := &browser{t: t, h: newTestServer(t, rt)}
	if rec := b.post("/insights", nil); rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	if rt.calls != 0 {
		t.Fatalf("model called without a table")
	}
}

func TestSessionsExpire(t *testing.T) {
	s := NewSessions(20 * time.Millisecond)
	s.Put("id", load(t, scores))
	if _, ok := s.Table("id"); !ok {
		t.Fatalf("table missing right after Put")
	}
	time.Sleep(40 * time.Millisecond)
	if _, ok := s.Table("id"); ok {
		t.Fatalf("table should have expired")
	}
	s.Put("id", load(t, scores))
	s.Drop("id")
	if _, ok := s.Table("id"); ok {
		t.Fatalf("table should be dropped")
	}
}
