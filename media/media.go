// Package media stores uploaded post images under the media root.
package media

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	PostImagesDir = "post_images"
	MaxImageSize  = 5 << 20
	URLPrefix     = "/media/"
)

var (
	ErrNotAnImage    = errors.New("upload a valid image: the file is not an image or is corrupted")
	ErrImageTooLarge = errors.New("image is larger than 5 MB")
)

var formats = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
}

type Storage struct {
	root string
}

func NewStorage(root string) *Storage {
	return &Storage{root: root}
}

func (s *Storage) Root() string { return s.root }

// SavePostImage validates fh as an image and writes it as
// post_images/<xxhash of content><ext>. Identical uploads share one file.
// The returned path is relative to the media root.
func (s *Storage) SavePostImage(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxImageSize {
		return "", ErrImageTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	_, format, err := image.DecodeConfig(src)
	if err != nil {
		return "", ErrNotAnImage
	}
	ext, ok := formats[format]
	if !ok {
		return "", ErrNotAnImage
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	digest := xxhash.New()
	if _, err := io.Copy(digest, src); err != nil {
		return "", err
	}
	rel := filepath.ToSlash(filepath.Join(PostImagesDir, fmt.Sprintf("%016x%s", digest.Sum64(), ext)))

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	if err := s.write(rel, src); err != nil {
		return "", err
	}
	return rel, nil
}

func (s *Storage) write(rel string, src io.Reader) error {
	path := s.path(rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}

	// Link fails if path exists, so the first complete copy wins.
	if err := os.Link(tmp.Name(), path); err != nil && !os.IsExist(err) {
		return err
	}
	return nil
}

// Remove deletes a stored file; a missing file is not an error.
func (s *Storage) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(s.path(rel))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Storage) path(rel string) string {
	clean := filepath.Clean("/" + filepath.FromSlash(rel))
	return filepath.Join(s.root, strings.TrimPrefix(clean, string(filepath.Separator)))
}

// URL is the public address of a stored file.
func URL(rel string) string {
	if rel == "" {
		return ""
	}
	return URLPrefix + rel
}
