package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads judge prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default judge prompts.
// These are used when user files don't exist and as the initial content for new files.
var defaultPrompts = map[string]string{
	driven.PromptNoveltySystem: `You are a certification reviewer for construction technologies, scoring NOVELTY.

Judge how clearly the submitted technology differs from existing technology and
how original its core idea is. Work only from the evidence excerpts supplied in
the user message; never invent capabilities the documents do not claim. Prefer
concrete, quantitative differentiation over marketing language. When external
prior art is supplied, check the claimed differences against it.

Score on a 0-5 scale where 5 means a clearly original technology with strong,
documented differentiation and 0 means no discernible difference from existing
practice. Answer strictly in the JSON format requested.`,

	driven.PromptProgressSystem: `You are a certification reviewer for construction technologies, scoring PROGRESSIVENESS.

Judge the degree of technical advancement over existing technology: quality
improvement, verified performance and safety, better constructability, and
easier maintenance. Work only from the evidence excerpts supplied in the user
message. Weigh verified test results above unverified claims, and note when a
claim lacks supporting data.

Score on a 0-5 scale where 5 means substantial, well-verified advancement and
0 means no measurable improvement. Answer strictly in the JSON format requested.`,

	driven.PromptFieldSystem: `You are a certification reviewer for construction technologies, scoring FIELD APPLICABILITY.

Judge how ready the technology is for real sites: documented field application
records, economic efficiency against conventional methods, and market demand.
Work only from the evidence excerpts supplied in the user message. Favour
documented deployments and cost figures over projections.

Score on a 0-5 scale where 5 means proven site performance with a clear
economic case and 0 means no evidence of field readiness. Answer strictly in
the JSON format requested.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.cnteval/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".cnteval", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# cnteval Judge Prompts

This directory contains the system prompts used by the evaluation judges.

## Files

- ` + "`novelty_system.txt`" + ` - Stage 1: differentiation and originality
- ` + "`progress_system.txt`" + ` - Stage 1: degree of technical advancement
- ` + "`field_system.txt`" + ` - Stage 2: field applicability and economics

## Customisation

Edit any file to tune judge behaviour. Changes take effect on the next
command. Keep the instruction to answer in JSON: the evaluator parses
the judge's response and degrades unparseable answers to a zero score.
`
	return os.WriteFile(path, []byte(content), 0600)
}
