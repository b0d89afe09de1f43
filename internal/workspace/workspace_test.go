package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// --- Sanitize ---

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ana", "Ana"},
		{"  Ana Souza  ", "Ana Souza"},
		{`a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"", ""},
		{"José da Silva", "José da Silva"},
		{" ? ", "_"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{"Ana", " x/y ", `<>:"/\|?*`, "\tMaria?\n", "..", "a  b", ""}
	for _, in := range inputs {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestSanitize_CollisionsAreNotDeduplicated(t *testing.T) {
	if Sanitize("a/b") != Sanitize("a?b") {
		t.Error("names differing only in illegal characters should collide")
	}
}

func TestValidSegment(t *testing.T) {
	for _, s := range []string{"", ".", ".."} {
		if ValidSegment(s) {
			t.Errorf("ValidSegment(%q) = true, want false", s)
		}
	}
	if !ValidSegment("Ana") {
		t.Error("ValidSegment(Ana) = false, want true")
	}
}

// --- Paths ---

func TestLayoutPaths(t *testing.T) {
	if got, want := PatientsPath(), "Processos Clinicos/Pacientes"; got != want {
		t.Errorf("PatientsPath = %q, want %q", got, want)
	}
	if got, want := PatientFilePath("Ana/B"), "Processos Clinicos/Pacientes/Ana_B/dados.json"; got != want {
		t.Errorf("PatientFilePath = %q, want %q", got, want)
	}
	if got, want := SessionsPath("Ana"), "Processos Clinicos/Pacientes/Ana/Sessões"; got != want {
		t.Errorf("SessionsPath = %q, want %q", got, want)
	}
}

// --- Manager ---

func TestManager_UnsupportedWithoutPicker(t *testing.T) {
	m := NewManager(nil)
	if m.Supported() {
		t.Fatal("Supported() = true without a picker")
	}
	if _, err := m.Select(context.Background()); !errors.Is(err, ErrFeatureUnavailable) {
		t.Errorf("Select error = %v, want ErrFeatureUnavailable", err)
	}
}

func TestManager_NotSelected(t *testing.T) {
	m := NewManager(StaticPicker(NewMemDir("root")))
	if _, err := m.Dir(); !errors.Is(err, ErrWorkspaceNotSelected) {
		t.Errorf("Dir error = %v, want ErrWorkspaceNotSelected", err)
	}
	if err := m.EnsurePatientTree(context.Background(), "Ana"); !errors.Is(err, ErrWorkspaceNotSelected) {
		t.Errorf("EnsurePatientTree error = %v, want ErrWorkspaceNotSelected", err)
	}
	if m.Name() != "" {
		t.Errorf("Name = %q before select, want empty", m.Name())
	}
}

func TestManager_SelectCreatesLayout(t *testing.T) {
	mem := NewMemDir("consultorio")
	m := NewManager(StaticPicker(mem))

	name, err := m.Select(context.Background())
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if name != "consultorio" {
		t.Errorf("name = %q, want consultorio", name)
	}
	info, err := mem.Stat(PatientsPath())
	if err != nil || !info.IsDir() {
		t.Fatalf("patients folder missing: %v", err)
	}

	// Selecting again is a no-op on the layout.
	if _, err := m.Select(context.Background()); err != nil {
		t.Fatalf("second Select failed: %v", err)
	}
}

func TestManager_SelectDenied(t *testing.T) {
	denied := PickerFunc(func(ctx context.Context) (Dir, error) {
		return nil, ErrPermissionDenied
	})
	m := NewManager(denied)
	if _, err := m.Select(context.Background()); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Select error = %v, want ErrPermissionDenied", err)
	}
	if _, err := m.Dir(); !errors.Is(err, ErrWorkspaceNotSelected) {
		t.Errorf("denied select should leave manager uninitialized, got %v", err)
	}
}

func TestManager_EnsurePatientTree(t *testing.T) {
	mem := NewMemDir("root")
	m := NewManager(StaticPicker(mem))
	if _, err := m.Select(context.Background()); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := m.EnsurePatientTree(context.Background(), "Ana: B"); err != nil {
			t.Fatalf("EnsurePatientTree #%d failed: %v", i+1, err)
		}
	}

	for _, sub := range []string{SessionsFolder, TestsFolder, NetworkFolder, DataFolder} {
		p := PatientPath("Ana: B") + "/" + sub
		if info, err := mem.Stat(p); err != nil || !info.IsDir() {
			t.Errorf("subfolder %s missing: %v", p, err)
		}
	}
}

// --- PathPicker / OSDir ---

func TestPathPicker_EmptyPathIsDenied(t *testing.T) {
	_, err := PathPicker{}.Pick(context.Background())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Pick error = %v, want ErrPermissionDenied", err)
	}
}

func TestPathPicker_MissingPathIsDenied(t *testing.T) {
	_, err := PathPicker{Path: filepath.Join(t.TempDir(), "nope")}.Pick(context.Background())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Pick error = %v, want ErrPermissionDenied", err)
	}
}

func TestPathPicker_FileIsDenied(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := PathPicker{Path: file}.Pick(context.Background())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Pick error = %v, want ErrPermissionDenied", err)
	}
}

func TestOSDir_SelectAndWrite(t *testing.T) {
	tmpDir := t.TempDir()
	m := NewManager(PathPicker{Path: tmpDir})
	t.Cleanup(func() { _ = m.Close() })

	name, err := m.Select(context.Background())
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if name != filepath.Base(tmpDir) {
		t.Errorf("name = %q, want %q", name, filepath.Base(tmpDir))
	}
	if err := m.EnsurePatientTree(context.Background(), "Ana"); err != nil {
		t.Fatalf("EnsurePatientTree failed: %v", err)
	}

	dir, _ := m.Dir()
	if err := dir.WriteFile(PatientFilePath("Ana"), []byte(`{"v":1}`)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := dir.WriteFile(PatientFilePath("Ana"), []byte(`{"v":2}`)); err != nil {
		t.Fatalf("second WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, RootFolder, PatientsFolder, "Ana", PatientFile))
	if err != nil {
		t.Fatalf("reading from disk: %v", err)
	}
	if string(data) != `{"v":2}` {
		t.Errorf("content = %s, want {\"v\":2}", data)
	}

	entries, err := dir.ReadDir(PatientPath("Ana"))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if !e.IsDir() && e.Name() != PatientFile {
			t.Errorf("unexpected leftover file %q", e.Name())
		}
	}
}

func TestOSDir_RejectsEscape(t *testing.T) {
	dir, err := OpenOSDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer dir.Close()

	if _, err := dir.ReadFile("../outside.json"); err == nil {
		t.Error("reading outside the root should fail")
	}
}

// --- MemDir ---

func TestMemDir_FailWriteKeepsContent(t *testing.T) {
	mem := NewMemDir("root")
	if err := mem.MkdirAll("a"); err != nil {
		t.Fatal(err)
	}
	if err := mem.WriteFile("a/f.json", []byte("old")); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("disk full")
	mem.FailWrite = func(string) error { return boom }
	if err := mem.WriteFile("a/f.json", []byte("new")); !errors.Is(err, boom) {
		t.Fatalf("WriteFile error = %v, want %v", err, boom)
	}

	data, _ := mem.ReadFile("a/f.json")
	if string(data) != "old" {
		t.Errorf("content = %q, want old", data)
	}
}

func TestMemDir_ReadDirListsDirectChildren(t *testing.T) {
	mem := NewMemDir("root")
	_ = mem.MkdirAll("p/b/deep")
	_ = mem.MkdirAll("p/a")
	_ = mem.WriteFile("p/z.json", []byte("{}"))

	entries, err := mem.ReadDir("p")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	want := []string{"a", "b", "z.json"}
	if len(names) != len(want) {
		t.Fatalf("entries = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entries[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if !IsNotExist(func() error { _, err := mem.ReadDir("missing"); return err }()) {
		t.Error("ReadDir on a missing folder should be not-exist")
	}
}
