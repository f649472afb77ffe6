package flux

import "sync"

// Word is an interned identifier handle. Equality and hashing are the
// equality/hashing of a plain int32.
type Word int32

// FileID is an interned file-path handle.
type FileID int32

// InvalidFileID is used for synthetic spans that don't belong to any real
// input file (e.g. a diagnostic about a missing import target).
const InvalidFileID FileID = -1

// Interner is the sole process-shareable, thread-safe object in the
// front-end (spec section 5: "the interner is the sole shared mutable
// resource; it uses internal synchronization"). It canonicalizes both
// identifier text and file paths to small integer handles, mirroring the
// teacher's Database.fileIDs/filePaths locking pattern in query.go, widened
// to also cover Words.
type Interner struct {
	mu sync.RWMutex

	wordOf  map[string]Word
	wordStr []string

	fileOf   map[string]FileID
	filePath []string
}

// NewInterner creates an empty interner. Nothing is pre-interned: builtin
// type names (sN, uN, f32, f64, bool, str) lex to their own token kinds and
// type lowering reads them from the token text, so construction stays
// allocation-light and testable in isolation.
func NewInterner() *Interner {
	return &Interner{
		wordOf: make(map[string]Word, 64),
		fileOf: make(map[string]FileID, 8),
	}
}

// Intern returns the Word for s, allocating a new handle on first sight.
func (in *Interner) Intern(s string) Word {
	in.mu.RLock()
	if w, ok := in.wordOf[s]; ok {
		in.mu.RUnlock()
		return w
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	if w, ok := in.wordOf[s]; ok {
		return w
	}
	w := Word(len(in.wordStr))
	in.wordStr = append(in.wordStr, s)
	in.wordOf[s] = w
	return w
}

// Text returns the string a Word was interned from.
func (in *Interner) Text(w Word) string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(w) < 0 || int(w) >= len(in.wordStr) {
		icePanic("Interner.Text: Word %d out of range", w)
	}
	return in.wordStr[w]
}

// InternFile returns the FileID for path, allocating a new handle on first
// sight. The same path always maps to the same FileID for the lifetime of
// the interner.
func (in *Interner) InternFile(path string) FileID {
	in.mu.RLock()
	if f, ok := in.fileOf[path]; ok {
		in.mu.RUnlock()
		return f
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	if f, ok := in.fileOf[path]; ok {
		return f
	}
	f := FileID(len(in.filePath))
	in.filePath = append(in.filePath, path)
	in.fileOf[path] = f
	return f
}

// FilePath returns the path a FileID was interned from.
func (in *Interner) FilePath(f FileID) string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(f) < 0 || int(f) >= len(in.filePath) {
		icePanic("Interner.FilePath: FileID %d out of range", f)
	}
	return in.filePath[f]
}

// WordCount reports how many distinct identifiers have been interned.
func (in *Interner) WordCount() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.wordStr)
}
