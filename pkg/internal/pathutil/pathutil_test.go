package pathutil_test

import (
	"strings"
	"testing"

	"github.com/lostyway/cloud-file-storage/pkg/internal/apperr"
	"github.com/lostyway/cloud-file-storage/pkg/internal/pathutil"
)

func TestRootPrefix(t *testing.T) {
	if got := pathutil.RootPrefix(1); got != "user-1-files/" {
		t.Errorf("RootPrefix(1) = %q, want %q", got, "user-1-files/")
	}

	if got := pathutil.RootPrefix(42); got != "user-42-files/" {
		t.Errorf("RootPrefix(42) = %q, want %q", got, "user-42-files/")
	}
}

func TestIsFolderPath(t *testing.T) {
	cases := []struct {
		path   string
		folder bool
	}{
		{"test/", true},
		{"test", true}, // 无扩展名按文件夹处理
		{"test/test2", true},
		{"test.txt", false},
		{"test/test.txt", false},
		{"a/b/c.pdf", false},
		{"a.b/", true}, // 结尾斜杠优先
		{"", true},
		{"/", true},
	}

	for _, c := range cases {
		if got := pathutil.IsFolderPath(c.path); got != c.folder {
			t.Errorf("IsFolderPath(%q) = %v, want %v", c.path, got, c.folder)
		}
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"test", "user-1-files/test/"},
		{"test/", "user-1-files/test/"},
		{"/test", "user-1-files/test/"},
		{"///test", "user-1-files/test/"},
		{"test/test2", "user-1-files/test/test2/"},
		{"test/test.txt", "user-1-files/test/test.txt"},
		{"", "user-1-files/"},
	}

	for _, c := range cases {
		if got := pathutil.Resolve(1, c.path); got != c.want {
			t.Errorf("Resolve(1, %q) = %q, want %q", c.path, got, c.want)
		}
	}
}

// TestResolveIdempotent 已解析的键再次解析保持不变.
func TestResolveIdempotent(t *testing.T) {
	inputs := []string{"test", "test/test2", "test/test.txt", "", "/deep/nested/dir"}

	for _, p := range inputs {
		once := pathutil.Resolve(1, p)
		twice := pathutil.Resolve(1, once)

		if once != twice {
			t.Errorf("Resolve not idempotent for %q: first %q, second %q", p, once, twice)
		}
	}
}

func TestValidateFolderKey(t *testing.T) {
	valid := []string{
		"user-1-files/",
		"user-1-files/test/",
		"user-1-files/test/test2/",
		"user-1-files/папка/подпапка/", // Unicode 字母
		"user-1-files/my folder/",
		"user-1-files/a_b-c/",
	}

	for _, key := range valid {
		if err := pathutil.ValidateFolderKey(key); err != nil {
			t.Errorf("ValidateFolderKey(%q) = %v, want nil", key, err)
		}
	}

	invalid := []string{
		"user-1-files/test",        // 缺结尾斜杠
		"user-1-files/test//a/",    // 双斜杠
		"user-1-files/./",          // 点段
		"user-1-files/../",         // 双点段
		"user-1-files/te.st/",      // 文件夹段不允许点
		"user-1-files/bad*chars/",  // 非法字符
		"user-1-files/tab\there/", // 控制字符
		"/",
		"",
	}

	for _, key := range invalid {
		err := pathutil.ValidateFolderKey(key)
		if err == nil {
			t.Errorf("ValidateFolderKey(%q) = nil, want error", key)
			continue
		}

		if !apperr.Is(err, apperr.KindInvalidPath) {
			t.Errorf("ValidateFolderKey(%q) kind = %v, want invalid_path", key, apperr.KindOf(err))
		}
	}
}

func TestValidateFileKey(t *testing.T) {
	valid := []string{
		"user-1-files/test.txt",
		"user-1-files/test/test.txt",
		"user-1-files/deep/er/file name.pdf",
		"user-1-files/отчёт.docx",
	}

	for _, key := range valid {
		if err := pathutil.ValidateFileKey(key); err != nil {
			t.Errorf("ValidateFileKey(%q) = %v, want nil", key, err)
		}
	}

	invalid := []string{
		"user-1-files/test",          // 无扩展名
		"user-1-files/test/",         // 文件夹形态
		"user-1-files//test.txt",     // 双斜杠
		"user-1-files/.txt",          // 空文件名
		"user-1-files/test.",         // 空扩展名
		"user-1-files/a.b.c",         // 文件名带点
		"user-1-files/../secret.txt", // 点段
		"user-1-files/f.t*t",         // 扩展名非法字符
		"",
	}

	for _, key := range invalid {
		if err := pathutil.ValidateFileKey(key); err == nil {
			t.Errorf("ValidateFileKey(%q) = nil, want error", key)
		}
	}
}

// TestValidationCompleteness 通过校验的键不含 '.'、'..'、'//' 段.
func TestValidationCompleteness(t *testing.T) {
	keys := []string{
		"user-1-files/a/b/",
		"user-1-files/a/b/c.txt",
		"user-1-files/x y/z_1-2/file.docx",
	}

	for _, key := range keys {
		if err := pathutil.ValidateKey(key); err != nil {
			t.Fatalf("ValidateKey(%q) = %v, want nil", key, err)
		}

		if strings.Contains(key, "//") {
			t.Errorf("accepted key %q contains //", key)
		}

		for _, seg := range strings.Split(strings.TrimSuffix(key, "/"), "/") {
			if seg == "." || seg == ".." {
				t.Errorf("accepted key %q contains dot segment", key)
			}
		}
	}
}

func TestParent(t *testing.T) {
	cases := []struct {
		key    string
		parent string
		ok     bool
	}{
		{"user-1-files/test/", "user-1-files/", true},
		{"user-1-files/test/test2/", "user-1-files/test/", true},
		{"user-1-files/test/test.txt", "user-1-files/test/", true},
		{"user-1-files/test.txt", "user-1-files/", true},
		{"user-1-files/", "", false},
		{"", "", false},
	}

	for _, c := range cases {
		parent, ok := pathutil.Parent(c.key)
		if parent != c.parent || ok != c.ok {
			t.Errorf("Parent(%q) = (%q, %v), want (%q, %v)", c.key, parent, ok, c.parent, c.ok)
		}
	}
}

func TestBasename(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{"user-1-files/test/", "test"},
		{"user-1-files/test/test2/", "test2"},
		{"user-1-files/test/test.txt", "test.txt"},
		{"user-1-files/", "user-1-files"},
		{"plain", "plain"},
	}

	for _, c := range cases {
		if got := pathutil.Basename(c.key); got != c.want {
			t.Errorf("Basename(%q) = %q, want %q", c.key, got, c.want)
		}
	}
}

func TestIsWithin(t *testing.T) {
	cases := []struct {
		outer, inner string
		want         bool
	}{
		{"user-1-files/a/", "user-1-files/a/b/", true},
		{"user-1-files/a/", "user-1-files/a/", false}, // 自身不算包含
		{"user-1-files/a/", "user-1-files/ab/", false},
		{"user-1-files/a/", "user-1-files/b/a/", false},
	}

	for _, c := range cases {
		if got := pathutil.IsWithin(c.outer, c.inner); got != c.want {
			t.Errorf("IsWithin(%q, %q) = %v, want %v", c.outer, c.inner, got, c.want)
		}
	}
}

func TestSameType(t *testing.T) {
	if !pathutil.SameType("a/", "b/") {
		t.Error("two folders must be same type")
	}

	if !pathutil.SameType("a.txt", "b.pdf") {
		t.Error("two files must be same type")
	}

	if pathutil.SameType("a/", "b.txt") {
		t.Error("folder and file must differ")
	}
}

func TestValidateQuery(t *testing.T) {
	valid := []string{"test", "report.pdf", "my file", "a-b_c", "отчёт"}
	for _, q := range valid {
		if err := pathutil.ValidateQuery(q); err != nil {
			t.Errorf("ValidateQuery(%q) = %v, want nil", q, err)
		}
	}

	invalid := []string{"", " ", ".", "..", "a/b", "/", "bad*query"}
	for _, q := range invalid {
		if err := pathutil.ValidateQuery(q); err == nil {
			t.Errorf("ValidateQuery(%q) = nil, want error", q)
		}
	}
}
