package assessmenu

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stanchion/internal/filemanager"
	"stanchion/internal/logging"
	"stanchion/internal/tui/components/filepicker"
	"stanchion/internal/tui/helpers"

	tea "github.com/charmbracelet/bubbletea"
)

func createTestModel(t *testing.T) AssessModel {
	t.Helper()
	logger, _ := logging.NewTestLogger()
	ctx := helpers.NewUIContext(100, 30, nil, logger)
	return NewAssessModel(ctx)
}

func testFiles() []filemanager.FileItem {
	return []filemanager.FileItem{
		{Name: "main.bicep", Path: "/tmp/main.bicep"},
		{Name: "network.tf", Path: "/tmp/network.tf"},
	}
}

func TestNewAssessModel(t *testing.T) {
	model := createTestModel(t)

	if model.state != StateLoading {
		t.Errorf("expected state %v, got %v", StateLoading, model.state)
	}
	if model.assessor == nil {
		t.Error("expected assessor to be built from the embedded standards")
	}
	if model.filePicker != nil {
		t.Error("expected file picker to be nil before the scan completes")
	}
}

func TestInitStartsScan(t *testing.T) {
	model := createTestModel(t)
	if cmd := model.Init(); cmd == nil {
		t.Error("expected Init to return a scan command")
	}
}

func TestFileScanComplete(t *testing.T) {
	model := createTestModel(t)

	updated, cmd := model.Update(FileScanCompleteMsg{Files: testFiles()})
	model = updated.(AssessModel)

	if model.state != StateFileSelection {
		t.Errorf("expected state %v, got %v", StateFileSelection, model.state)
	}
	if model.filePicker == nil {
		t.Error("expected file picker to be created")
	}
	if len(model.iacFiles) != 2 {
		t.Errorf("expected 2 files, got %d", len(model.iacFiles))
	}
	if cmd == nil {
		t.Error("expected file picker init command")
	}
}

func TestFileScanError(t *testing.T) {
	model := createTestModel(t)

	updated, _ := model.Update(FileScanErrorMsg{Err: errors.New("scan blew up")})
	model = updated.(AssessModel)

	if model.state != StateError {
		t.Errorf("expected state %v, got %v", StateError, model.state)
	}
	if model.err == nil {
		t.Error("expected error to be stored")
	}
}

func TestFileSelectionStartsAssessment(t *testing.T) {
	model := createTestModel(t)
	updated, _ := model.Update(FileScanCompleteMsg{Files: testFiles()})
	model = updated.(AssessModel)

	updated, cmd := model.Update(filepicker.FileSelectedMsg{File: testFiles()[0]})
	model = updated.(AssessModel)

	if model.state != StateAssessing {
		t.Errorf("expected state %v, got %v", StateAssessing, model.state)
	}
	if model.selectedFile.Name != "main.bicep" {
		t.Errorf("expected selected file main.bicep, got %q", model.selectedFile.Name)
	}
	if cmd == nil {
		t.Error("expected assess command")
	}
}

func TestAssessComplete(t *testing.T) {
	model := createTestModel(t)
	model.state = StateAssessing
	model.selectedFile = testFiles()[0]

	updated, _ := model.Update(AssessCompleteMsg{Verdict: "## Compliant", Rendered: "Compliant"})
	model = updated.(AssessModel)

	if model.state != StateVerdict {
		t.Errorf("expected state %v, got %v", StateVerdict, model.state)
	}
	if model.verdict != "## Compliant" {
		t.Errorf("expected verdict to be stored, got %q", model.verdict)
	}
}

func TestAssessError(t *testing.T) {
	model := createTestModel(t)
	model.state = StateAssessing

	updated, _ := model.Update(AssessErrorMsg{Err: errors.New("deployment unreachable")})
	model = updated.(AssessModel)

	if model.state != StateError {
		t.Errorf("expected state %v, got %v", StateError, model.state)
	}
}

func TestVerdictKeys(t *testing.T) {
	t.Run("a returns to file selection without rescanning", func(t *testing.T) {
		model := createTestModel(t)
		updated, _ := model.Update(FileScanCompleteMsg{Files: testFiles()})
		model = updated.(AssessModel)
		model.state = StateVerdict
		model.selectedFile = testFiles()[0]
		model.verdict = "verdict"

		key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}
		updated, _ = model.Update(key)
		model = updated.(AssessModel)

		if model.state != StateFileSelection {
			t.Errorf("expected state %v, got %v", StateFileSelection, model.state)
		}
		if model.verdict != "" {
			t.Error("expected verdict to be cleared")
		}
		if len(model.iacFiles) != 2 {
			t.Error("expected scanned file list to be kept")
		}
	})

	t.Run("m navigates to main menu", func(t *testing.T) {
		model := createTestModel(t)
		model.state = StateVerdict

		key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")}
		_, cmd := model.Update(key)

		if cmd == nil {
			t.Fatal("expected navigation command")
		}
		if _, ok := cmd().(helpers.NavigateToMainMenuMsg); !ok {
			t.Error("expected NavigateToMainMenuMsg")
		}
	})
}

func TestErrorStateKeys(t *testing.T) {
	t.Run("r retries the scan", func(t *testing.T) {
		model := createTestModel(t)
		model.state = StateError
		model.err = errors.New("boom")

		key := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}
		updated, cmd := model.Update(key)
		model = updated.(AssessModel)

		if model.state != StateLoading {
			t.Errorf("expected state %v, got %v", StateLoading, model.state)
		}
		if cmd == nil {
			t.Error("expected rescan command")
		}
	})

	t.Run("esc returns to main menu", func(t *testing.T) {
		model := createTestModel(t)
		model.state = StateError

		key := tea.KeyMsg{Type: tea.KeyEscape}
		_, cmd := model.Update(key)

		if cmd == nil {
			t.Fatal("expected navigation command")
		}
		if _, ok := cmd().(helpers.NavigateToMainMenuMsg); !ok {
			t.Error("expected NavigateToMainMenuMsg")
		}
	})
}

func TestAssessUnconfiguredDeployment(t *testing.T) {
	// Without Azure settings the assessor has no completer; assessing must
	// surface a configuration error instead of hanging or panicking.
	model := createTestModel(t)
	model.selectedFile = testFiles()[0]

	path := filepath.Join(t.TempDir(), "main.bicep")
	if err := os.WriteFile(path, []byte("param location string = resourceGroup().location\n"), 0644); err != nil {
		t.Fatal(err)
	}

	msg := model.assessFileCmd(path)()
	errMsg, ok := msg.(AssessErrorMsg)
	if !ok {
		t.Fatalf("expected AssessErrorMsg, got %T", msg)
	}
	if !strings.Contains(errMsg.Err.Error(), "not configured") {
		t.Errorf("expected configuration error, got %v", errMsg.Err)
	}
}

func TestViewRendering(t *testing.T) {
	tests := []struct {
		name     string
		state    AssessModelState
		contains string
	}{
		{"loading view", StateLoading, "Scanning"},
		{"assessing view", StateAssessing, "Assessing"},
		{"verdict view", StateVerdict, "Verdict"},
		{"error view", StateError, "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := createTestModel(t)
			model.state = tt.state
			view := model.View()
			if !strings.Contains(view, tt.contains) {
				t.Errorf("expected view to contain %q", tt.contains)
			}
		})
	}
}

func TestRenderVerdictFallsBackToRaw(t *testing.T) {
	out := renderVerdict("plain text verdict", 0)
	if !strings.Contains(out, "plain text verdict") {
		t.Error("expected rendered output to carry the verdict text")
	}
}
