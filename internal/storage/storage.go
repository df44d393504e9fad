package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/azayd/website/backend/pkg/logger"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultMaxSize is the upload ceiling when none is configured.
const DefaultMaxSize int64 = 5 * 1024 * 1024

// ErrRejected is wrapped by every upload validation failure.
var ErrRejected = errors.New("upload rejected")

// ValidationError describes why an upload was refused.
type ValidationError struct {
	Name    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrRejected }

// Backend persists validated blobs.
type Backend interface {
	// Save writes r under name and returns the final name, which may differ
	// from name when it is already taken.
	Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
	URL(name string) string
	Ping(ctx context.Context) error
}

// AllowedTypes maps permitted extensions to their MIME type.
var AllowedTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

var dangerousExtensions = map[string]bool{
	".exe": true, ".bat": true, ".cmd": true, ".sh": true, ".php": true,
	".phtml": true, ".pl": true, ".cgi": true, ".asp": true, ".aspx": true,
	".js": true, ".vbs": true, ".py": true, ".jar": true, ".dll": true,
	".bin": true, ".com": true, ".msi": true, ".htaccess": true,
}

// Sniffed content types that are refused whatever the file is called.
var blockedContent = []string{
	"application/x-elf",
	"application/x-executable",
	"application/x-sharedlib",
	"application/x-mach-binary",
	"application/vnd.microsoft.portable-executable",
	"application/x-msdownload",
	"application/x-java-applet",
	"application/jar",
	"text/x-shellscript",
	"text/x-php",
	"text/x-perl",
	"text/x-python",
	"text/x-lua",
	"text/x-tcl",
	"text/javascript",
	"text/html",
}

var safeStem = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ExtensionSet restricts an upload field to a subset of AllowedTypes.
type ExtensionSet []string

var (
	ResumeExtensions = ExtensionSet{"pdf", "doc", "docx"}
	ImageExtensions  = ExtensionSet{"jpg", "jpeg", "png", "gif", "svg"}
)

func (s ExtensionSet) allows(ext string) bool {
	ext = strings.TrimPrefix(ext, ".")
	for _, e := range s {
		if e == ext {
			return true
		}
	}
	return false
}

// RejectHook is told about every refused upload.
type RejectHook func(name, reason string)

// SecureStorage validates uploads before handing them to a Backend.
type SecureStorage struct {
	backend  Backend
	maxSize  int64
	onReject RejectHook
}

func NewSecureStorage(backend Backend, maxSize int64) *SecureStorage {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &SecureStorage{backend: backend, maxSize: maxSize}
}

// OnReject registers a hook called for each rejected upload.
func (s *SecureStorage) OnReject(hook RejectHook) {
	s.onReject = hook
}

func (s *SecureStorage) Backend() Backend {
	return s.backend
}

func (s *SecureStorage) MaxSize() int64 {
	return s.maxSize
}

// Save validates content and stores it under name. size is the declared
// length; the content itself is also capped while reading. On rejection
// nothing is written and the error wraps ErrRejected.
func (s *SecureStorage) Save(ctx context.Context, name string, content io.Reader, size int64) (string, error) {
	return s.save(ctx, name, content, size, nil)
}

// SaveAs is Save with an additional per-field extension rule.
func (s *SecureStorage) SaveAs(ctx context.Context, name string, content io.Reader, size int64, allowed ExtensionSet) (string, error) {
	return s.save(ctx, name, content, size, allowed)
}

func (s *SecureStorage) save(ctx context.Context, name string, content io.Reader, size int64, allowed ExtensionSet) (string, error) {
	logger.Info().Str("file", name).Int64("size", size).Msg("File upload attempt")

	if size > s.maxSize {
		return "", s.reject(name, fmt.Sprintf("File size exceeds maximum limit of %dMB", s.maxSize/(1024*1024)))
	}

	ext := strings.ToLower(filepath.Ext(name))
	if dangerousExtensions[ext] {
		return "", s.reject(name, "File type not allowed for security reasons")
	}
	if _, ok := AllowedTypes[ext]; !ok {
		return "", s.reject(name, "Unsupported file type. Allowed types: "+strings.Join(allowedExtensionList(), ", "))
	}
	if allowed != nil && !allowed.allows(ext) {
		return "", s.reject(name, fmt.Sprintf("File extension \"%s\" is not allowed. Allowed extensions are: %s.",
			strings.TrimPrefix(ext, "."), strings.Join(allowed, ", ")))
	}

	data, err := io.ReadAll(io.LimitReader(content, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return "", s.reject(name, fmt.Sprintf("File size exceeds maximum limit of %dMB", s.maxSize/(1024*1024)))
	}

	detected := mimetype.Detect(data)
	if isBlockedContent(detected) {
		return "", s.reject(name, "File type not allowed for security reasons")
	}

	finalName := SanitizeName(name)
	if finalName != filepath.ToSlash(name) {
		logger.Warn().Str("file", name).Str("renamed", finalName).Msg("Unsafe filename detected, generating random name")
	}

	saved, err := s.backend.Save(ctx, finalName, bytes.NewReader(data), AllowedTypes[ext])
	if err != nil {
		logger.Error().Err(err).Str("file", finalName).Msg("File upload error")
		return "", fmt.Errorf("store upload: %w", err)
	}
	logger.Info().Str("file", saved).Str("detected", detected.String()).Msg("File validated successfully")
	return saved, nil
}

func (s *SecureStorage) reject(name, reason string) error {
	logger.Warn().Str("file", name).Str("reason", reason).Msg("Upload rejected")
	if s.onReject != nil {
		s.onReject(name, reason)
	}
	return &ValidationError{Name: name, Message: reason}
}

func (s *SecureStorage) Delete(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	return s.backend.Delete(ctx, name)
}

func (s *SecureStorage) URL(name string) string {
	if name == "" {
		return ""
	}
	return s.backend.URL(name)
}

// SanitizeName keeps the directory and extension of name and replaces a
// stem outside [a-zA-Z0-9_.-] with a random id.
func SanitizeName(name string) string {
	name = filepath.ToSlash(name)
	dir, base := path.Split(name)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if !safeStem.MatchString(stem) {
		stem = uuid.NewString()
	}
	return path.Clean(dir + stem + strings.ToLower(ext))
}

func isBlockedContent(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		for _, blocked := range blockedContent {
			if m.Is(blocked) {
				return true
			}
		}
	}
	return false
}

func allowedExtensionList() []string {
	exts := make([]string, 0, len(AllowedTypes))
	for ext := range AllowedTypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// cleanKey turns name into a relative slash path without parent references.
func cleanKey(name string) (string, error) {
	key := path.Clean("/" + filepath.ToSlash(name))
	key = strings.TrimPrefix(key, "/")
	if key == "" || key == "." {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return key, nil
}

func alternativeName(key string) string {
	ext := path.Ext(key)
	stem := strings.TrimSuffix(key, ext)
	return fmt.Sprintf("%s_%s%s", stem, strings.ReplaceAll(uuid.NewString(), "-", "")[:7], ext)
}
