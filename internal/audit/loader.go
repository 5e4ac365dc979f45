package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobsignal/internal/model"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type fetchDoneMsg struct {
	batch model.Batch
	err   error
}

type spinnerTickMsg struct{}

type loaderModel struct {
	label   string
	fetchFn func(ctx context.Context) (model.Batch, error)
	frame   int
	result  model.Batch
	err     error
	done    bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doFetch(), m.tick())
}

func (m loaderModel) doFetch() tea.Cmd {
	fetchFn := m.fetchFn
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		batch, err := fetchFn(ctx)
		return fetchDoneMsg{batch: batch, err: err}
	}
}

func (m loaderModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchDoneMsg:
		m.result = msg.batch
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = fmt.Errorf("cancelled")
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Render(spinnerFrames[m.frame])
	return fmt.Sprintf("%s Fetching and enriching postings from %s...\n", spinner, m.label)
}

// RunLoader shows a spinner while a live batch is fetched and enriched. It
// renders inline (no alt screen).
func RunLoader(label string, fetchFn func(ctx context.Context) (model.Batch, error)) (model.Batch, error) {
	m := loaderModel{
		label:   label,
		fetchFn: fetchFn,
	}
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return model.Batch{}, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}

// LoadBatch reads one batch artifact written by a batch writer.
func LoadBatch(path string) (model.Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Batch{}, fmt.Errorf("reading batch: %w", err)
	}
	var batch model.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return model.Batch{}, fmt.Errorf("decoding batch %s: %w", path, err)
	}
	return batch, nil
}

// FindBatches lists batch files under dir, newest partition first. Paths
// are returned relative to dir.
func FindBatches(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing batches in %s: %w", dir, err)
	}
	sort.SliceStable(files, func(i, j int) bool {
		return partitionHour(files[i]) > partitionHour(files[j])
	})
	return files, nil
}

// partitionHour extracts the ingest_ts=<hour> segment of a batch path, or ""
// for files outside the partition layout.
func partitionHour(rel string) string {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if hour, ok := strings.CutPrefix(part, "ingest_ts="); ok {
			return hour
		}
	}
	return ""
}
