package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Shekhu04/Whispr/internal/config"
	"github.com/Shekhu04/Whispr/internal/database"
	"github.com/Shekhu04/Whispr/internal/models"
	"github.com/Shekhu04/Whispr/internal/presence"
	"github.com/Shekhu04/Whispr/internal/upload"
	"github.com/Shekhu04/Whispr/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		JWT: config.JWTConfig{
			Secret:      "router-test-secret",
			CookieName:  "jwt",
			ExpireHours: 1,
		},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
		Upload:   config.UploadConfig{Dir: t.TempDir(), BaseURL: "/uploads"},
	}
}

func newTestApp(t *testing.T) (*gin.Engine, *config.Config) {
	t.Helper()

	cfg := testConfig(t)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	storage, err := upload.NewLocalStorage(cfg.Upload.Dir, cfg.Upload.BaseURL)
	require.NoError(t, err)

	hub := ws.NewHub(presence.NewRegistry())
	return SetupRouter(cfg, db, hub, storage), cfg
}

func doJSON(r *gin.Engine, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type userEnvelope struct {
	Code int `json:"code"`
	Data struct {
		User struct {
			ID       uint   `json:"id"`
			FullName string `json:"fullName"`
			Email    string `json:"email"`
		} `json:"user"`
	} `json:"data"`
}

// signup 注册一个用户，返回会话 cookie 和用户 ID
func signup(t *testing.T, r *gin.Engine, cookieName, fullName, email string) (*http.Cookie, uint) {
	t.Helper()

	body := fmt.Sprintf(`{"fullName":%q,"email":%q,"password":"secret123"}`, fullName, email)
	w := doJSON(r, http.MethodPost, "/api/auth/signup", body)
	require.Equal(t, http.StatusCreated, w.Code, "signup body: %s", w.Body.String())

	var env userEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotZero(t, env.Data.User.ID)

	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			return c, env.Data.User.ID
		}
	}
	t.Fatalf("signup response missing %q cookie", cookieName)
	return nil, 0
}

func TestSignup_SetsHTTPOnlyCookie(t *testing.T) {
	r, cfg := newTestApp(t)

	cookie, id := signup(t, r, cfg.JWT.CookieName, "Alice", "alice@example.com")
	assert.NotZero(t, id)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
}

func TestSignup_ShortPassword(t *testing.T) {
	r, _ := newTestApp(t)

	w := doJSON(r, http.MethodPost, "/api/auth/signup",
		`{"fullName":"Al","email":"al@example.com","password":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignup_MissingFields(t *testing.T) {
	r, _ := newTestApp(t)

	testCases := []string{
		`{}`,
		`{"fullName":"Al"}`,
		`{"fullName":"Al","email":"al@example.com"}`,
		`{"fullName":"Al","email":"not-an-email","password":"secret123"}`,
	}
	for _, body := range testCases {
		w := doJSON(r, http.MethodPost, "/api/auth/signup", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	r, cfg := newTestApp(t)

	signup(t, r, cfg.JWT.CookieName, "Alice", "alice@example.com")

	w := doJSON(r, http.MethodPost, "/api/auth/signup",
		`{"fullName":"Imposter","email":"alice@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin(t *testing.T) {
	r, cfg := newTestApp(t)
	signup(t, r, cfg.JWT.CookieName, "Alice", "alice@example.com")

	w := doJSON(r, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var hasCookie bool
	for _, c := range w.Result().Cookies() {
		if c.Name == cfg.JWT.CookieName && c.Value != "" {
			hasCookie = true
		}
	}
	assert.True(t, hasCookie, "login must set session cookie")
}

func TestLogin_WrongCredentials(t *testing.T) {
	r, cfg := newTestApp(t)
	signup(t, r, cfg.JWT.CookieName, "Alice", "alice@example.com")

	// 密码错误和邮箱不存在必须是同样的 401，不泄露哪个错了
	testCases := []string{
		`{"email":"alice@example.com","password":"wrong-pass"}`,
		`{"email":"nobody@example.com","password":"secret123"}`,
	}
	for _, body := range testCases {
		w := doJSON(r, http.MethodPost, "/api/auth/login", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "body: %s", body)
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	r, cfg := newTestApp(t)
	cookie, _ := signup(t, r, cfg.JWT.CookieName, "Alice", "alice@example.com")

	w := doJSON(r, http.MethodPost, "/api/auth/logout", `{}`, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == cfg.JWT.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "logout must expire the session cookie")
}

func TestMe(t *testing.T) {
	r, cfg := newTestApp(t)
	cookie, id := signup(t, r, cfg.JWT.CookieName, "Alice", "alice@example.com")

	w := doJSON(r, http.MethodGet, "/api/me", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var env userEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, id, env.Data.User.ID)
	assert.Equal(t, "alice@example.com", env.Data.User.Email)
}

func TestMe_Unauthorized(t *testing.T) {
	r, _ := newTestApp(t)

	w := doJSON(r, http.MethodGet, "/api/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 伪造 token 同样 401
	w = doJSON(r, http.MethodGet, "/api/me", "", &http.Cookie{Name: "jwt", Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListUsers_ExcludesCaller(t *testing.T) {
	r, cfg := newTestApp(t)
	aliceCookie, aliceID := signup(t, r, cfg.JWT.CookieName, "Alice", "alice@example.com")
	_, bobID := signup(t, r, cfg.JWT.CookieName, "Bob", "bob@example.com")

	w := doJSON(r, http.MethodGet, "/api/users", "", aliceCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data struct {
			Users []struct {
				ID uint `json:"id"`
			} `json:"users"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	require.Len(t, env.Data.Users, 1)
	assert.Equal(t, bobID, env.Data.Users[0].ID)
	assert.NotEqual(t, aliceID, env.Data.Users[0].ID)
}

func TestSendAndGetMessages(t *testing.T) {
	r, cfg := newTestApp(t)
	aliceCookie, _ := signup(t, r, cfg.JWT.CookieName, "Alice", "alice@example.com")
	bobCookie, bobID := signup(t, r, cfg.JWT.CookieName, "Bob", "bob@example.com")

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/messages/%d", bobID),
		`{"text":"hi bob"}`, aliceCookie)
	require.Equal(t, http.StatusCreated, w.Code, "send body: %s", w.Body.String())

	var sent struct {
		Data struct {
			Message models.Message `json:"message"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))
	assert.Equal(t, "hi bob", sent.Data.Message.Text)
	assert.Equal(t, bobID, sent.Data.Message.ReceiverID)

	// 双方视角都能看到同一条消息
	for _, cookie := range []*http.Cookie{aliceCookie, bobCookie} {
		otherID := bobID
		if cookie == bobCookie {
			otherID = sent.Data.Message.SenderID
		}
		w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/messages/%d", otherID), "", cookie)
		require.Equal(t, http.StatusOK, w.Code)

		var got struct {
			Data struct {
				Messages []models.Message `json:"messages"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got.Data.Messages, 1)
		assert.Equal(t, sent.Data.Message.ID, got.Data.Messages[0].ID)
		assert.Equal(t, "hi bob", got.Data.Messages[0].Text)
	}
}

func TestSendMessage_EmptyBody(t *testing.T) {
	r, cfg := newTestApp(t)
	aliceCookie, _ := signup(t, r, cfg.JWT.CookieName, "Alice", "alice@example.com")
	_, bobID := signup(t, r, cfg.JWT.CookieName, "Bob", "bob@example.com")

	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/messages/%d", bobID),
		`{"text":"","image":""}`, aliceCookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendMessage_UnknownReceiver(t *testing.T) {
	r, cfg := newTestApp(t)
	aliceCookie, _ := signup(t, r, cfg.JWT.CookieName, "Alice", "alice@example.com")

	w := doJSON(r, http.MethodPost, "/api/messages/9999", `{"text":"hello?"}`, aliceCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWS_HandshakeRequiresAuth(t *testing.T) {
	r, _ := newTestApp(t)

	w := doJSON(r, http.MethodGet, "/ws", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
