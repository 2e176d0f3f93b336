package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/crytic/symgen/symbolic/types"
	"github.com/crytic/symgen/utils"
	"github.com/pkg/errors"
)

// CasesDirectoryName is the name of the directory, within the output directory, that per-case files are written to.
const CasesDirectoryName = "cases"

// caseFile represents a single serialized item and its state on the filesystem.
type caseFile[T any] struct {
	// fileName describes the filename the file should be written with, in the caseDirectory.path.
	fileName string

	// data describes an object whose data should be written to the file.
	data T

	// writtenToDisk indicates whether the item has been flushed to disk yet.
	writtenToDisk bool
}

// caseDirectory is a provider for caseFile items in a given directory, offering read/write operations which JSON
// serialize/deserialize items of a given type.
type caseDirectory[T any] struct {
	// path signifies the directory to store caseFile items within. If the path is an empty string, files will not be
	// read from, or written to disk.
	path string

	// files represents the caseFile items stored or to be stored in the directory.
	files []*caseFile[T]

	// filesLock represents a thread lock used when editing files.
	filesLock sync.Mutex
}

// newCaseDirectory returns a new caseDirectory with the provided directory path set.
func newCaseDirectory[T any](path string) *caseDirectory[T] {
	return &caseDirectory[T]{
		path:  path,
		files: make([]*caseFile[T], 0),
	}
}

// addFile adds a file to the list, to be written on the next call to writeFiles. A file with the same name, ignoring
// case, is replaced.
func (cd *caseDirectory[T]) addFile(fileName string, data T) {
	cd.filesLock.Lock()
	defer cd.filesLock.Unlock()

	lowerFileName := strings.ToLower(fileName)
	for _, file := range cd.files {
		if lowerFileName == strings.ToLower(file.fileName) {
			file.data = data
			file.writtenToDisk = false
			return
		}
	}
	cd.files = append(cd.files, &caseFile[T]{fileName: fileName, data: data})
}

// readFiles parses every file matching the glob pattern within the directory, replacing the current list. Files are
// ordered by name.
func (cd *caseDirectory[T]) readFiles(filePattern string) error {
	if cd.path == "" {
		return nil
	}

	filePaths, err := filepath.Glob(filepath.Join(cd.path, filePattern))
	if err != nil {
		return errors.WithStack(err)
	}
	sort.Strings(filePaths)

	cd.filesLock.Lock()
	defer cd.filesLock.Unlock()
	cd.files = make([]*caseFile[T], 0, len(filePaths))
	for _, filePath := range filePaths {
		b, err := os.ReadFile(filePath)
		if err != nil {
			return errors.WithStack(err)
		}

		var fileData T
		if err = json.Unmarshal(b, &fileData); err != nil {
			return errors.Wrapf(err, "could not parse %v", filePath)
		}
		cd.files = append(cd.files, &caseFile[T]{fileName: filepath.Base(filePath), data: fileData, writtenToDisk: true})
	}
	return nil
}

// writeFiles flushes every file which has not been written yet to disk, and returns the paths written.
func (cd *caseDirectory[T]) writeFiles() ([]string, error) {
	if cd.path == "" {
		return nil, nil
	}

	cd.filesLock.Lock()
	defer cd.filesLock.Unlock()

	if err := utils.MakeDirectory(cd.path); err != nil {
		return nil, err
	}

	written := make([]string, 0)
	for _, file := range cd.files {
		if file.writtenToDisk {
			continue
		}
		if len(file.fileName) == 0 {
			return nil, errors.New("failed to flush a case file to disk as it does not have a filename")
		}

		filePath := filepath.Join(cd.path, file.fileName)
		b, err := json.MarshalIndent(file.data, "", " ")
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if err = os.WriteFile(filePath, b, 0644); err != nil {
			return nil, errors.Wrapf(err, "could not write case file %v", filePath)
		}
		file.writtenToDisk = true
		written = append(written, filePath)
	}
	return written, nil
}

// removeStaleFiles deletes the files matching the glob pattern within the directory which are not in the list, and
// returns the paths removed.
func (cd *caseDirectory[T]) removeStaleFiles(filePattern string) ([]string, error) {
	if cd.path == "" {
		return nil, nil
	}

	filePaths, err := filepath.Glob(filepath.Join(cd.path, filePattern))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cd.filesLock.Lock()
	defer cd.filesLock.Unlock()
	current := make(map[string]bool, len(cd.files))
	for _, file := range cd.files {
		current[strings.ToLower(file.fileName)] = true
	}

	removed := make([]string, 0)
	for _, filePath := range filePaths {
		if current[strings.ToLower(filepath.Base(filePath))] {
			continue
		}
		if err = os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "could not remove stale case file %v", filePath)
		}
		removed = append(removed, filePath)
	}
	return removed, nil
}

// caseFileName returns the name of the file a test case is written to: the SHA3 hash of its input tuple and its path,
// so that duplicate inputs targeting different paths get distinct files.
func caseFileName(testCase *types.TestCase) string {
	return utils.HashParts(testCase.InputTuple(), strconv.Itoa(testCase.PathID)) + ".json"
}

// WriteCases writes every test case of the report to its own JSON file in the provided directory, and returns the
// paths written. Case files left in the directory by earlier runs are removed.
func WriteCases(directory string, report *Report) ([]string, error) {
	cd := newCaseDirectory[*types.TestCase](directory)
	for _, testCase := range report.TestCases {
		cd.addFile(caseFileName(testCase), testCase)
	}
	if _, err := cd.removeStaleFiles("*.json"); err != nil {
		return nil, err
	}
	return cd.writeFiles()
}

// ReadCases reads every test case file in the provided directory, ordered by path.
func ReadCases(directory string) ([]*types.TestCase, error) {
	cd := newCaseDirectory[*types.TestCase](directory)
	if err := cd.readFiles("*.json"); err != nil {
		return nil, err
	}
	testCases := utils.SliceSelect(cd.files, func(file *caseFile[*types.TestCase]) *types.TestCase {
		return file.data
	})
	sort.SliceStable(testCases, func(i, j int) bool {
		return testCases[i].PathID < testCases[j].PathID
	})
	return testCases, nil
}
