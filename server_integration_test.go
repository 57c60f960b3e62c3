package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	jwtSecret = []byte("integration-test-secret")
	_ = os.Setenv("UPLOAD_BASE", t.TempDir())
	initDB()
	r := gin.Default()
	setupRoutes(r)
	return r
}

func registerAndLogin(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	regBody, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp := performRequest(r, http.MethodPost, "/register", bytes.NewBuffer(regBody), "", "application/json")
	if resp.Code != http.StatusCreated && resp.Code != http.StatusConflict {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	loginBody, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp = performRequest(r, http.MethodPost, "/login", bytes.NewBuffer(loginBody), "", "application/json")
	if resp.Code != http.StatusOK {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %+v", loginResp)
	}
	return token
}

// dataField returns the data object from a {success, data} envelope.
func dataField(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad response json: %v body=%s", err, resp.Body.String())
	}
	data, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %s", resp.Body.String())
	}
	return data
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	token := registerAndLogin(t, r, "user1_"+suffix, "password1")

	// registration seeds the default category tree
	resp := performRequest(r, http.MethodGet, "/v1/categories?limit=100", nil, token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("list categories failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var catList struct {
		Count int64 `json:"count"`
		Data  []map[string]any
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &catList)
	if catList.Count == 0 {
		t.Fatalf("expected seeded default categories, got none: %s", resp.Body.String())
	}

	// create account
	accBody, _ := json.Marshal(map[string]any{"name": "Checking " + suffix})
	resp = performRequest(r, http.MethodPost, "/v1/accounts", bytes.NewBuffer(accBody), token, "application/json")
	if resp.Code != http.StatusCreated {
		t.Fatalf("create account failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	accountID := dataField(t, resp)["id"].(float64)

	// duplicate account name (case-insensitive) must conflict
	dupBody, _ := json.Marshal(map[string]any{"name": "CHECKING " + suffix})
	resp = performRequest(r, http.MethodPost, "/v1/accounts", bytes.NewBuffer(dupBody), token, "application/json")
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate account got %d body=%s", resp.Code, resp.Body.String())
	}

	// create category
	catBody, _ := json.Marshal(map[string]any{"name": "Gadgets " + suffix, "transactionType": "expense"})
	resp = performRequest(r, http.MethodPost, "/v1/categories", bytes.NewBuffer(catBody), token, "application/json")
	if resp.Code != http.StatusCreated {
		t.Fatalf("create category failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	categoryID := dataField(t, resp)["id"].(float64)

	// create transaction; 40.55 must land as its decimal view
	txBody, _ := json.Marshal(map[string]any{
		"type":     "expense",
		"date":     time.Now().UTC().Format(time.RFC3339),
		"amount":   40.55,
		"status":   "completed",
		"note":     "new phone",
		"category": categoryID,
		"account":  accountID,
	})
	resp = performRequest(r, http.MethodPost, "/v1/transactions", bytes.NewBuffer(txBody), token, "application/json")
	if resp.Code != http.StatusCreated {
		t.Fatalf("create transaction failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	txData := dataField(t, resp)
	if amt, _ := txData["amount"].(float64); amt != 4055 {
		t.Fatalf("expected stored amount 4055 got %v", txData["amount"])
	}
	if ad := fmt.Sprintf("%v", txData["amountDecimal"]); ad != "40.55" {
		t.Fatalf("expected amountDecimal 40.55 got %v", txData["amountDecimal"])
	}
	txID := txData["id"].(float64)

	// list transactions with pagination
	resp = performRequest(r, http.MethodGet, "/v1/transactions?limit=10&page=1&status=completed", nil, token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("list transactions failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// monthly report
	year := time.Now().UTC().Year()
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/v1/transactions/monthly?year=%d", year), nil, token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("monthly report failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var monthly struct {
		Count int              `json:"count"`
		Data  []map[string]any `json:"data"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &monthly)
	if monthly.Count != 12 || len(monthly.Data) != 12 {
		t.Fatalf("expected 12 month reports, got count=%d len=%d", monthly.Count, len(monthly.Data))
	}

	// invalid year
	resp = performRequest(r, http.MethodGet, "/v1/transactions/monthly?year=1850", nil, token, "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for year 1850 got %d", resp.Code)
	}

	// summary
	resp = performRequest(r, http.MethodGet, "/v1/transactions/summary", nil, token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("summary failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// settings auto-create + update
	resp = performRequest(r, http.MethodGet, "/v1/settings", nil, token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("get settings failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	setBody, _ := json.Marshal(map[string]any{"defaultCurrency": "USD", "firstDayOfMonth": 5})
	resp = performRequest(r, http.MethodPut, "/v1/settings", bytes.NewBuffer(setBody), token, "application/json")
	if resp.Code != http.StatusOK {
		t.Fatalf("update settings failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	badSet, _ := json.Marshal(map[string]any{"defaultCurrency": "XXX"})
	resp = performRequest(r, http.MethodPut, "/v1/settings", bytes.NewBuffer(badSet), token, "application/json")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported currency got %d", resp.Code)
	}

	// a parent category with children: deletable only after the children go
	parentBody, _ := json.Marshal(map[string]any{"name": "Bills " + suffix, "transactionType": "expense"})
	resp = performRequest(r, http.MethodPost, "/v1/categories", bytes.NewBuffer(parentBody), token, "application/json")
	if resp.Code != http.StatusCreated {
		t.Fatalf("create parent category failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	parentID := dataField(t, resp)["id"].(float64)
	childBody, _ := json.Marshal(map[string]any{"name": "Internet " + suffix, "transactionType": "expense", "parent": parentID})
	resp = performRequest(r, http.MethodPost, "/v1/categories", bytes.NewBuffer(childBody), token, "application/json")
	if resp.Code != http.StatusCreated {
		t.Fatalf("create child category failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodDelete, fmt.Sprintf("/v1/categories/%d", int(parentID)), nil, token, "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 deleting a category with children got %d body=%s", resp.Code, resp.Body.String())
	}

	// another user must not see the first user's records, and a foreign
	// category with children must read as absent, not as undeletable
	otherToken := registerAndLogin(t, r, "user2_"+suffix, "password2")
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/v1/transactions/%d", int(txID)), nil, otherToken, "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign transaction got %d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodDelete, fmt.Sprintf("/v1/categories/%d", int(parentID)), nil, otherToken, "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting a foreign category got %d body=%s", resp.Code, resp.Body.String())
	}

	// unauthorized access to protected endpoint should be 401
	unauth := performRequest(r, http.MethodGet, "/v1/transactions", nil, "", "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthorized list got %d", unauth.Code)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	r := setupTestServer(t)
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	username := "rotator_" + suffix

	regBody, _ := json.Marshal(map[string]string{"username": username, "password": "password1"})
	resp := performRequest(r, http.MethodPost, "/register", bytes.NewBuffer(regBody), "", "application/json")
	if resp.Code != http.StatusCreated {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	loginBody, _ := json.Marshal(map[string]string{"username": username, "password": "password1"})
	resp = performRequest(r, http.MethodPost, "/login", bytes.NewBuffer(loginBody), "", "application/json")
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	refresh, _ := loginResp["refresh_token"].(string)
	if refresh == "" {
		t.Fatalf("no refresh token in login response: %+v", loginResp)
	}

	refBody, _ := json.Marshal(map[string]string{"refresh_token": refresh})
	resp = performRequest(r, http.MethodPost, "/refresh", bytes.NewBuffer(refBody), "", "application/json")
	if resp.Code != http.StatusOK {
		t.Fatalf("refresh failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// the old refresh token is revoked by rotation
	resp = performRequest(r, http.MethodPost, "/refresh", bytes.NewBuffer(refBody), "", "application/json")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for reused refresh token got %d", resp.Code)
	}
}

func TestAttachmentDuplicateUploadLeavesNoOrphanFile(t *testing.T) {
	r := setupTestServer(t)
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	token := registerAndLogin(t, r, "uploader_"+suffix, "password1")

	upload := func() *httptest.ResponseRecorder {
		buf := &bytes.Buffer{}
		mw := multipart.NewWriter(buf)
		w, _ := mw.CreateFormFile("file", "receipt.txt")
		_, _ = w.Write([]byte("TOTAL $12.34"))
		_ = mw.Close()
		return performRequest(r, http.MethodPost, "/v1/attachments", buf, token, mw.FormDataContentType())
	}

	if resp := upload(); resp.Code != http.StatusCreated {
		t.Fatalf("first upload failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	before, err := os.ReadDir(uploadBaseDir())
	if err != nil {
		t.Fatal(err)
	}

	if resp := upload(); resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate file name got %d body=%s", resp.Code, resp.Body.String())
	}
	after, err := os.ReadDir(uploadBaseDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != len(before) {
		t.Fatalf("rejected upload left a file behind: %d files before, %d after", len(before), len(after))
	}
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	initDB()
}
