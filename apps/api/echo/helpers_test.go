package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classreport/core"
	"github.com/trezcool/classreport/core/chat"
	"github.com/trezcool/classreport/core/report"
	"github.com/trezcool/classreport/storage/database/inmem"
	"github.com/trezcool/classreport/tests"
)

const handover = "Jane is moving to the evening group."

var (
	t0       = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	cooldown = 3 * time.Hour
)

type fakeModel struct {
	output chat.Output
	err    error
	calls  int
}

func (m *fakeModel) Generate(context.Context, chat.ModelRequest) (chat.Output, error) {
	m.calls++
	return m.output, m.err
}

type testApp struct {
	*Server
	store *report.Store
	model *fakeModel
	clock *testutil.Clock
}

func setup(t *testing.T, opts ...func(conf *core.Config)) testApp {
	conf := &core.Config{
		AppName:  "ClassReport",
		TestMode: true,
		Server:   core.ServerConfig{DisableReqLogs: true},
	}
	for _, opt := range opts {
		opt(conf)
	}
	logger := testutil.NewLogger(t)
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	store := testutil.NewStore(t)
	model := &fakeModel{output: chat.PlainText{Text: "ok"}}
	clock := testutil.NewClock(t0)
	gw := chat.NewGateway(store, model, chat.GatewayConfig{})
	chatSvc := chat.NewService(
		gw,
		inmemdb.NewChatRepository(inmemdb.Open()),
		logger,
		chat.ServiceConfig{BlockCooldown: cooldown, HistoryTurns: 6},
		clock.Now,
	)

	srv := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Groups:     store,
		ChatSvc:    chatSvc,
		Handover:   handover,
		Validate:   validate,
		Translator: translator,
	})
	return testApp{Server: srv, store: store, model: model, clock: clock}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonUnmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

// checkCodeAndData skips the body comparison when tt.wantData is nil.
func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newRequest(method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
