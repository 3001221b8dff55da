package testutil

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"blogicum/models"
)

const loginPath = "/test/login/"

// NewRouter returns a test-mode engine with a cookie session store and a
// route that logs a user in by ID.
func NewRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := cookie.NewStore([]byte("secret"))
	router.Use(sessions.Sessions("test-session", store))
	router.GET(loginPath+":id", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		session := sessions.Default(c)
		session.Set("user_id", uint(id))
		if err := session.Save(); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	return router
}

// Login returns session cookies for user on a router built by NewRouter.
func Login(t *testing.T, router *gin.Engine, user *models.User) []*http.Cookie {
	t.Helper()

	w := Get(router, loginPath+strconv.FormatUint(uint64(user.ID), 10), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("login %s: status %d", user.Username, w.Code)
	}
	return w.Result().Cookies()
}

func Get(router *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	return serve(router, req, cookies)
}

// PostForm submits form url-encoded.
func PostForm(router *gin.Engine, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return serve(router, req, cookies)
}

// PostMultipart submits form as multipart/form-data with an optional file
// under field "image".
func PostMultipart(router *gin.Engine, path string, form url.Values, filename string, content []byte, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, values := range form {
		for _, v := range values {
			_ = mw.WriteField(key, v)
		}
	}
	if filename != "" {
		fw, _ := mw.CreateFormFile("image", filename)
		_, _ = fw.Write(content)
	}
	_ = mw.Close()

	req, _ := http.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return serve(router, req, cookies)
}

func serve(router *gin.Engine, req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
