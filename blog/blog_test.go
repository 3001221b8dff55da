package blog

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"blogicum/auth"
	"blogicum/config"
	"blogicum/media"
	"blogicum/models"
	"blogicum/pages"
	"blogicum/repository"
	"blogicum/templates"
	"blogicum/testutil"
)

type env struct {
	db      *gorm.DB
	router  *gin.Engine
	storage *media.Storage
}

func setup(t *testing.T) *env {
	db := testutil.SetupTestDB(t)
	repos := repository.New(db)
	storage := media.NewStorage(t.TempDir())

	router := testutil.NewRouter(t)
	require.NoError(t, templates.Setup(router))
	router.Use(auth.NewAuthModule(repos, &config.Config{BcryptCost: bcrypt.MinCost}).LoadUser)
	NewBlogModule(repos, storage).RegisterRoutes(router)
	pages.Register(router)

	return &env{db: db, router: router, storage: storage}
}

func postForm(category *models.Category, title string) url.Values {
	return url.Values{
		"title":        {title},
		"text":         {"Body of " + title},
		"pub_date":     {"2024-01-02T10:00"},
		"category":     {fmt.Sprint(category.ID)},
		"location":     {""},
		"is_published": {"true"},
	}
}

func pngBytes(t *testing.T) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func reload(t *testing.T, db *gorm.DB, post *models.Post) models.Post {
	var fresh models.Post
	require.NoError(t, db.First(&fresh, post.ID).Error)
	return fresh
}

func TestIndex_OnlyVisiblePosts(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	hidden := testutil.CreateCategory(t, e.db, "hidden", false)

	testutil.CreatePost(t, e.db, alice, travel, testutil.Titled("Visible post"))
	testutil.CreatePost(t, e.db, alice, travel, testutil.Titled("Draft post"), testutil.Unpublished())
	testutil.CreatePost(t, e.db, alice, travel, testutil.Titled("Scheduled post"), testutil.PubDate(time.Now().Add(time.Hour)))
	testutil.CreatePost(t, e.db, alice, hidden, testutil.Titled("Hidden category post"))
	testutil.CreatePost(t, e.db, alice, nil, testutil.Titled("Uncategorized post"))

	w := testutil.Get(e.router, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Visible post")
	assert.NotContains(t, body, "Draft post")
	assert.NotContains(t, body, "Scheduled post")
	assert.NotContains(t, body, "Hidden category post")
	assert.NotContains(t, body, "Uncategorized post")
}

func TestIndex_Pagination(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	for i := 0; i < 12; i++ {
		testutil.CreatePost(t, e.db, alice, travel, testutil.PubDate(time.Now().Add(-time.Duration(i+1)*time.Minute)))
	}

	w := testutil.Get(e.router, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, repository.PostsPerPage, strings.Count(w.Body.String(), `class="post-card"`))

	w = testutil.Get(e.router, "/?page=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, strings.Count(w.Body.String(), `class="post-card"`))

	w = testutil.Get(e.router, "/?page=last", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, strings.Count(w.Body.String(), `class="post-card"`))

	assert.Equal(t, http.StatusNotFound, testutil.Get(e.router, "/?page=3", nil).Code)
	assert.Equal(t, http.StatusNotFound, testutil.Get(e.router, "/?page=abc", nil).Code)
}

func TestIndex_ShowsCommentCount(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	post := testutil.CreatePost(t, e.db, alice, travel)
	testutil.CreateComment(t, e.db, alice, post, "one")
	testutil.CreateComment(t, e.db, alice, post, "two")

	w := testutil.Get(e.router, "/", nil)

	assert.Contains(t, w.Body.String(), "Comments (2)")
}

func TestDetail_AnonymousFuturePost(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	post := testutil.CreatePost(t, e.db, alice, travel, testutil.PubDate(time.Now().Add(24*time.Hour)))

	w := testutil.Get(e.router, post.URL(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDetail_OwnerSeesUnpublished(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	post := testutil.CreatePost(t, e.db, alice, travel, testutil.Titled("Secret draft"), testutil.Unpublished())

	w := testutil.Get(e.router, post.URL(), testutil.Login(t, e.router, alice))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Secret draft")

	w = testutil.Get(e.router, post.URL(), testutil.Login(t, e.router, bob))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDetail_HiddenCategory(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	hidden := testutil.CreateCategory(t, e.db, "hidden", false)
	post := testutil.CreatePost(t, e.db, alice, hidden)

	assert.Equal(t, http.StatusNotFound, testutil.Get(e.router, post.URL(), nil).Code)
	assert.Equal(t, http.StatusOK, testutil.Get(e.router, post.URL(), testutil.Login(t, e.router, alice)).Code)
}

func TestDetail_Missing(t *testing.T) {
	e := setup(t)

	assert.Equal(t, http.StatusNotFound, testutil.Get(e.router, "/posts/999/", nil).Code)
	assert.Equal(t, http.StatusNotFound, testutil.Get(e.router, "/posts/abc/", nil).Code)
}

func TestDetail_CommentsInOrder(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	post := testutil.CreatePost(t, e.db, alice, travel)
	testutil.CreateComment(t, e.db, alice, post, "first comment")
	testutil.CreateComment(t, e.db, alice, post, "second comment")

	body := testutil.Get(e.router, post.URL(), nil).Body.String()

	first := strings.Index(body, "first comment")
	second := strings.Index(body, "second comment")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
}

func TestDetail_MarkdownEscapesHTML(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	post := testutil.CreatePost(t, e.db, alice, travel)
	require.NoError(t, e.db.Model(post).Update("text", "**bold** <script>alert(1)</script>").Error)

	body := testutil.Get(e.router, post.URL(), nil).Body.String()

	assert.Contains(t, body, "<strong>bold</strong>")
	assert.NotContains(t, body, "<script>alert(1)</script>")
}

func TestCreate_RequiresLogin(t *testing.T) {
	e := setup(t)

	w := testutil.Get(e.router, "/posts/create/", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/auth/login/?next="))
}

func TestCreate_ForcesAuthor(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	travel := testutil.CreateCategory(t, e.db, "travel", true)

	form := postForm(travel, "Alice writes")
	form.Set("author", fmt.Sprint(bob.ID))
	w := testutil.PostForm(e.router, "/posts/create/", form, testutil.Login(t, e.router, alice))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))

	var post models.Post
	require.NoError(t, e.db.Where("title = ?", "Alice writes").First(&post).Error)
	assert.Equal(t, alice.ID, post.AuthorID)
	assert.True(t, post.IsPublished)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), post.PubDate.UTC())
}

func TestCreate_InvalidForm(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	cookies := testutil.Login(t, e.router, alice)

	form := postForm(travel, "")
	w := testutil.PostForm(e.router, "/posts/create/", form, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")

	form = postForm(travel, "Bad date")
	form.Set("pub_date", "yesterday")
	w = testutil.PostForm(e.router, "/posts/create/", form, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	form = postForm(travel, "Bad category")
	form.Set("category", "999")
	w = testutil.PostForm(e.router, "/posts/create/", form, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var n int64
	e.db.Model(&models.Post{}).Count(&n)
	assert.Zero(t, n)
}

func TestCreate_BlankTextRejected(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	post := testutil.CreatePost(t, e.db, alice, travel)
	cookies := testutil.Login(t, e.router, alice)

	form := postForm(travel, "   ")
	form.Set("text", "   ")
	w := testutil.PostForm(e.router, "/posts/create/", form, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")

	w = testutil.PostForm(e.router, "/posts/"+fmt.Sprint(post.ID)+"/comment/", url.Values{"text": {"  \n "}}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var posts, comments int64
	e.db.Model(&models.Post{}).Count(&posts)
	e.db.Model(&models.Comment{}).Count(&comments)
	assert.Equal(t, int64(1), posts)
	assert.Zero(t, comments)
}

func TestCreate_WithImage(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	travel := testutil.CreateCategory(t, e.db, "travel", true)

	w := testutil.PostMultipart(e.router, "/posts/create/", postForm(travel, "Pictured"),
		"photo.png", pngBytes(t), testutil.Login(t, e.router, alice))
	require.Equal(t, http.StatusFound, w.Code)

	var post models.Post
	require.NoError(t, e.db.Where("title = ?", "Pictured").First(&post).Error)
	require.NotEmpty(t, post.Image)
	assert.True(t, strings.HasPrefix(post.Image, media.PostImagesDir+"/"))
	_, err := os.Stat(filepath.Join(e.storage.Root(), post.Image))
	assert.NoError(t, err)
}

func TestCreate_InsertFailureLeavesNoImage(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	cookies := testutil.Login(t, e.router, alice)
	require.NoError(t, e.db.Callback().Create().Before("gorm:create").Register("test:fail_posts", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "posts" {
			_ = tx.AddError(errors.New("insert failed"))
		}
	}))

	w := testutil.PostMultipart(e.router, "/posts/create/", postForm(travel, "Pictured"), "photo.png", pngBytes(t), cookies)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	entries, _ := os.ReadDir(filepath.Join(e.storage.Root(), media.PostImagesDir))
	assert.Empty(t, entries)
}

func TestEdit_UpdateFailureKeepsPreviousImage(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	post := testutil.CreatePost(t, e.db, alice, travel)
	cookies := testutil.Login(t, e.router, alice)
	require.NoError(t, e.db.Callback().Update().Before("gorm:update").Register("test:fail_posts", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "posts" {
			_ = tx.AddError(errors.New("update failed"))
		}
	}))

	w := testutil.PostMultipart(e.router, "/posts/"+fmt.Sprint(post.ID)+"/edit/", postForm(travel, "Pictured"), "photo.png", pngBytes(t), cookies)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, reload(t, e.db, post).Image)
	entries, _ := os.ReadDir(filepath.Join(e.storage.Root(), media.PostImagesDir))
	assert.Empty(t, entries)
}

func TestCreate_RejectsNonImage(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	travel := testutil.CreateCategory(t, e.db, "travel", true)

	w := testutil.PostMultipart(e.router, "/posts/create/", postForm(travel, "Not pictured"),
		"notes.png", []byte("plain text"), testutil.Login(t, e.router, alice))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var n int64
	e.db.Model(&models.Post{}).Count(&n)
	assert.Zero(t, n)
}

func TestEdit_NonOwnerRedirected(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	post := testutil.CreatePost(t, e.db, alice, travel, testutil.Titled("Original"))
	cookies := testutil.Login(t, e.router, bob)

	w := testutil.Get(e.router, "/posts/"+fmt.Sprint(post.ID)+"/edit/", cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, post.URL(), w.Header().Get("Location"))

	w = testutil.PostForm(e.router, "/posts/"+fmt.Sprint(post.ID)+"/edit/", postForm(travel, "Hijacked"), cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, post.URL(), w.Header().Get("Location"))
	assert.Equal(t, "Original", reload(t, e.db, post).Title)
}

func TestEdit_Owner(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	food := testutil.CreateCategory(t, e.db, "food", true)
	post := testutil.CreatePost(t, e.db, alice, travel, testutil.Titled("Original"))
	cookies := testutil.Login(t, e.router, alice)

	w := testutil.Get(e.router, "/posts/"+fmt.Sprint(post.ID)+"/edit/", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Original"`)

	form := postForm(food, "Renamed")
	form.Del("is_published")
	w = testutil.PostForm(e.router, "/posts/"+fmt.Sprint(post.ID)+"/edit/", form, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, post.URL(), w.Header().Get("Location"))

	fresh := reload(t, e.db, post)
	assert.Equal(t, "Renamed", fresh.Title)
	assert.Equal(t, food.ID, *fresh.CategoryID)
	assert.False(t, fresh.IsPublished)
	assert.Equal(t, alice.ID, fresh.AuthorID)
}

func TestEdit_ClearImage(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	cookies := testutil.Login(t, e.router, alice)

	w := testutil.PostMultipart(e.router, "/posts/create/", postForm(travel, "Pictured"), "photo.png", pngBytes(t), cookies)
	require.Equal(t, http.StatusFound, w.Code)
	var post models.Post
	require.NoError(t, e.db.Where("title = ?", "Pictured").First(&post).Error)
	stored := filepath.Join(e.storage.Root(), post.Image)

	form := postForm(travel, "Pictured")
	form.Set("image-clear", "true")
	w = testutil.PostMultipart(e.router, "/posts/"+fmt.Sprint(post.ID)+"/edit/", form, "", nil, cookies)
	require.Equal(t, http.StatusFound, w.Code)

	assert.Empty(t, reload(t, e.db, &post).Image)
	_, err := os.Stat(stored)
	assert.True(t, os.IsNotExist(err))
}

func TestDelete_NonOwnerForbidden(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	post := testutil.CreatePost(t, e.db, alice, travel)
	cookies := testutil.Login(t, e.router, bob)
	path := "/posts/" + fmt.Sprint(post.ID) + "/delete/"

	assert.Equal(t, http.StatusForbidden, testutil.Get(e.router, path, cookies).Code)
	assert.Equal(t, http.StatusForbidden, testutil.PostForm(e.router, path, url.Values{}, cookies).Code)

	var n int64
	e.db.Model(&models.Post{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestDelete_Owner(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	post := testutil.CreatePost(t, e.db, alice, travel, testutil.Titled("Doomed"))
	testutil.CreateComment(t, e.db, bob, post, "nice")
	cookies := testutil.Login(t, e.router, alice)
	path := "/posts/" + fmt.Sprint(post.ID) + "/delete/"

	w := testutil.Get(e.router, path, cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Doomed"`)

	w = testutil.PostForm(e.router, path, url.Values{}, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))

	var posts, comments int64
	e.db.Model(&models.Post{}).Count(&posts)
	e.db.Model(&models.Comment{}).Count(&comments)
	assert.Zero(t, posts)
	assert.Zero(t, comments)
}

func TestAddComment(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	post := testutil.CreatePost(t, e.db, alice, travel)

	w := testutil.PostForm(e.router, "/posts/"+fmt.Sprint(post.ID)+"/comment/",
		url.Values{"text": {"hi"}}, testutil.Login(t, e.router, bob))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, post.URL(), w.Header().Get("Location"))

	var comment models.Comment
	require.NoError(t, e.db.First(&comment).Error)
	assert.Equal(t, "hi", comment.Text)
	assert.Equal(t, bob.ID, comment.AuthorID)
	assert.Equal(t, post.ID, comment.PostID)
}

func TestAddComment_Rejected(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	visible := testutil.CreatePost(t, e.db, alice, travel)
	draft := testutil.CreatePost(t, e.db, alice, travel, testutil.Unpublished())
	cookies := testutil.Login(t, e.router, bob)

	w := testutil.PostForm(e.router, "/posts/"+fmt.Sprint(draft.ID)+"/comment/", url.Values{"text": {"hi"}}, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.PostForm(e.router, "/posts/999/comment/", url.Values{"text": {"hi"}}, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.PostForm(e.router, "/posts/"+fmt.Sprint(visible.ID)+"/comment/", url.Values{"text": {""}}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.PostForm(e.router, "/posts/"+fmt.Sprint(visible.ID)+"/comment/", url.Values{"text": {"hi"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/auth/login/"))

	var n int64
	e.db.Model(&models.Comment{}).Count(&n)
	assert.Zero(t, n)
}

func TestEditComment(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	post := testutil.CreatePost(t, e.db, alice, travel)
	comment := testutil.CreateComment(t, e.db, bob, post, "hi")
	path := fmt.Sprintf("/posts/%d/edit_comment/%d/", post.ID, comment.ID)

	w := testutil.PostForm(e.router, path, url.Values{"text": {"changed by alice"}}, testutil.Login(t, e.router, alice))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, post.URL(), w.Header().Get("Location"))

	var fresh models.Comment
	require.NoError(t, e.db.First(&fresh, comment.ID).Error)
	assert.Equal(t, "hi", fresh.Text)

	bobCookies := testutil.Login(t, e.router, bob)
	w = testutil.Get(e.router, path, bobCookies)
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutil.PostForm(e.router, path, url.Values{"text": {"hello"}}, bobCookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, post.URL(), w.Header().Get("Location"))
	require.NoError(t, e.db.First(&fresh, comment.ID).Error)
	assert.Equal(t, "hello", fresh.Text)

	w = testutil.Get(e.router, fmt.Sprintf("/posts/%d/edit_comment/999/", post.ID), bobCookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteComment(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	post := testutil.CreatePost(t, e.db, alice, travel)
	comment := testutil.CreateComment(t, e.db, bob, post, "hi")
	path := fmt.Sprintf("/posts/%d/delete_comment/%d/", post.ID, comment.ID)

	w := testutil.PostForm(e.router, path, url.Values{}, testutil.Login(t, e.router, alice))
	assert.Equal(t, http.StatusFound, w.Code)
	var n int64
	e.db.Model(&models.Comment{}).Count(&n)
	assert.Equal(t, int64(1), n)

	w = testutil.PostForm(e.router, path, url.Values{}, testutil.Login(t, e.router, bob))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, post.URL(), w.Header().Get("Location"))
	e.db.Model(&models.Comment{}).Count(&n)
	assert.Zero(t, n)
}

func TestCategory(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	food := testutil.CreateCategory(t, e.db, "food", true)
	testutil.CreateCategory(t, e.db, "hidden", false)
	testutil.CreatePost(t, e.db, alice, travel, testutil.Titled("Trip report"))
	testutil.CreatePost(t, e.db, alice, food, testutil.Titled("Recipe"))

	w := testutil.Get(e.router, "/category/travel/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Trip report")
	assert.NotContains(t, w.Body.String(), "Recipe")

	assert.Equal(t, http.StatusNotFound, testutil.Get(e.router, "/category/hidden/", nil).Code)
	assert.Equal(t, http.StatusNotFound, testutil.Get(e.router, "/category/missing/", nil).Code)
}

func TestProfile_ListingPerViewer(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	bob := testutil.CreateUser(t, e.db, "bob")
	travel := testutil.CreateCategory(t, e.db, "travel", true)
	testutil.CreatePost(t, e.db, alice, travel, testutil.Titled("Public one"))
	testutil.CreatePost(t, e.db, alice, travel, testutil.Titled("Private one"), testutil.Unpublished())

	w := testutil.Get(e.router, "/profile/alice/", testutil.Login(t, e.router, alice))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Public one")
	assert.Contains(t, w.Body.String(), "Private one")

	w = testutil.Get(e.router, "/profile/alice/", testutil.Login(t, e.router, bob))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Public one")
	assert.NotContains(t, w.Body.String(), "Private one")

	assert.Equal(t, http.StatusNotFound, testutil.Get(e.router, "/profile/nobody/", nil).Code)
}

func TestEditProfile(t *testing.T) {
	e := setup(t)
	alice := testutil.CreateUser(t, e.db, "alice")
	testutil.CreateUser(t, e.db, "bob")
	cookies := testutil.Login(t, e.router, alice)

	w := testutil.Get(e.router, "/profile/edit/", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="alice"`)

	w = testutil.PostForm(e.router, "/profile/edit/", url.Values{"username": {"bob"}}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), duplicateUsername)

	w = testutil.PostForm(e.router, "/profile/edit/", url.Values{
		"username":   {"alicia"},
		"first_name": {"Alice"},
		"last_name":  {"Liddell"},
		"email":      {"alicia@example.com"},
	}, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/alicia/", w.Header().Get("Location"))

	var fresh models.User
	require.NoError(t, e.db.First(&fresh, alice.ID).Error)
	assert.Equal(t, "alicia", fresh.Username)
	assert.Equal(t, "Alice Liddell", fresh.FullName())
	assert.Equal(t, "hashedpassword", fresh.PasswordHash)
}

func TestEditProfile_RequiresLogin(t *testing.T) {
	e := setup(t)

	w := testutil.PostForm(e.router, "/profile/edit/", url.Values{"username": {"x"}}, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/auth/login/"))
}
