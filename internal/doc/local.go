package doc

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/joescharf/issuedesk/internal/models"
)

// LocalStore keeps companion documents as markdown files with a YAML
// frontmatter block. Files are named by ULID so renaming a document never
// moves it; the display title lives in the frontmatter.
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at dir, creating it if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create docs directory: %w", err)
	}
	return &LocalStore{root: dir}, nil
}

var _ Store = (*LocalStore)(nil)

// localRef addresses a document by its current file path. The path doubles
// as the document URL persisted on the issue row.
type localRef struct {
	path string
}

func (r *localRef) URL() string { return r.path }

// frontmatter is the YAML block at the top of each document file.
type frontmatter struct {
	Title   string   `yaml:"title"`
	Created string   `yaml:"created"`
	Editors []string `yaml:"editors,omitempty"`
	Viewers []string `yaml:"viewers,omitempty"`
}

// newULID generates a new ULID string for a document file name.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

func (s *LocalStore) Create(ctx context.Context, title string) (Ref, error) {
	path := filepath.Join(s.root, newULID()+".md")
	fm := frontmatter{
		Title:   title,
		Created: time.Now().Format(models.TimeFormat),
	}
	if err := writeDoc(path, fm, ""); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return &localRef{path: path}, nil
}

func (s *LocalStore) OpenByURL(ctx context.Context, url string) (Ref, error) {
	if _, _, err := readDoc(url); err != nil {
		return nil, fmt.Errorf("open document %s: %w", url, err)
	}
	return &localRef{path: url}, nil
}

func (s *LocalStore) Title(ctx context.Context, ref Ref) (string, error) {
	r, err := localRefOf(ref)
	if err != nil {
		return "", err
	}
	fm, _, err := readDoc(r.path)
	if err != nil {
		return "", fmt.Errorf("read document title: %w", err)
	}
	return fm.Title, nil
}

func (s *LocalStore) Rename(ctx context.Context, ref Ref, newTitle string) error {
	r, err := localRefOf(ref)
	if err != nil {
		return err
	}
	fm, body, err := readDoc(r.path)
	if err != nil {
		return fmt.Errorf("rename document: %w", err)
	}
	fm.Title = newTitle
	if err := writeDoc(r.path, fm, body); err != nil {
		return fmt.Errorf("rename document: %w", err)
	}
	return nil
}

func (s *LocalStore) AddEditor(ctx context.Context, ref Ref, email string) error {
	return s.addGrant(ref, email, true)
}

func (s *LocalStore) AddViewer(ctx context.Context, ref Ref, email string) error {
	return s.addGrant(ref, email, false)
}

func (s *LocalStore) addGrant(ref Ref, email string, editor bool) error {
	r, err := localRefOf(ref)
	if err != nil {
		return err
	}
	fm, body, err := readDoc(r.path)
	if err != nil {
		return fmt.Errorf("grant access: %w", err)
	}
	if editor {
		fm.Editors = appendUnique(fm.Editors, email)
	} else {
		fm.Viewers = appendUnique(fm.Viewers, email)
	}
	if err := writeDoc(r.path, fm, body); err != nil {
		return fmt.Errorf("grant access: %w", err)
	}
	return nil
}

func (s *LocalStore) AppendBody(ctx context.Context, ref Ref, b Body) error {
	r, err := localRefOf(ref)
	if err != nil {
		return err
	}
	fm, body, err := readDoc(r.path)
	if err != nil {
		return fmt.Errorf("append document body: %w", err)
	}
	if err := writeDoc(r.path, fm, body+renderBody(b)); err != nil {
		return fmt.Errorf("append document body: %w", err)
	}
	return nil
}

// renderBody lays out the submission details: a metadata list followed by
// Summary / Details / Reason sections and an empty Work Log.
func renderBody(b Body) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "- Submitted by: %s\n", b.Submitter)
	fmt.Fprintf(&sb, "- Created: %s\n", b.CreateTime.Format(models.TimeFormat))
	if b.Severity != "" {
		fmt.Fprintf(&sb, "- Severity: %s\n", b.Severity)
	}
	if !b.DesiredDeadline.IsZero() {
		fmt.Fprintf(&sb, "- Desired deadline: %s\n", b.DesiredDeadline.Format(models.DateFormat))
	}

	fmt.Fprintf(&sb, "\n## Summary\n\n%s\n", b.Summary)
	fmt.Fprintf(&sb, "\n## Details\n\n%s\n", b.Details)
	fmt.Fprintf(&sb, "\n## Reason\n\n%s\n", b.Reason)
	sb.WriteString("\n## Work Log\n")

	return sb.String()
}

// LocalFolder files documents into a subdirectory, mirroring how the
// original system moved new documents out of the root into a shared folder.
type LocalFolder struct {
	dir string
}

// NewLocalFolder creates a folder at dir, creating it if needed.
func NewLocalFolder(dir string) (*LocalFolder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create issues folder: %w", err)
	}
	return &LocalFolder{dir: dir}, nil
}

var _ Folder = (*LocalFolder)(nil)

// AddFile moves the document file into the folder. The handle tracks the
// new location, so it must be filed before its URL is persisted.
func (f *LocalFolder) AddFile(ctx context.Context, ref Ref) error {
	r, err := localRefOf(ref)
	if err != nil {
		return err
	}
	dest := filepath.Join(f.dir, filepath.Base(r.path))
	if err := os.Rename(r.path, dest); err != nil {
		return fmt.Errorf("file document: %w", err)
	}
	r.path = dest
	return nil
}

func localRefOf(ref Ref) (*localRef, error) {
	r, ok := ref.(*localRef)
	if !ok {
		return nil, fmt.Errorf("foreign document handle %T", ref)
	}
	return r, nil
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

// readDoc splits a document file into its frontmatter and body.
func readDoc(path string) (frontmatter, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return frontmatter{}, "", err
	}
	text := string(data)

	const delim = "---\n"
	if !strings.HasPrefix(text, delim) {
		return frontmatter{}, "", fmt.Errorf("missing frontmatter in %s", path)
	}
	rest := text[len(delim):]
	end := strings.Index(rest, "\n"+delim)
	if end < 0 {
		return frontmatter{}, "", fmt.Errorf("unterminated frontmatter in %s", path)
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return frontmatter{}, "", fmt.Errorf("parse frontmatter in %s: %w", path, err)
	}
	body := strings.TrimPrefix(rest[end+1+len(delim):], "\n")
	return fm, body, nil
}

func writeDoc(path string, fm frontmatter, body string) error {
	meta, err := yaml.Marshal(fm)
	if err != nil {
		return fmt.Errorf("encode frontmatter: %w", err)
	}
	content := "---\n" + string(meta) + "---\n\n" + body
	return os.WriteFile(path, []byte(content), 0644)
}
