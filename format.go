//
// Copyright (c) 2026 Osmose Engineering
//

package implicit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Reader needs io.ReaderAt for archive/zip
type Reader interface {
	io.Reader
	io.ReaderAt
}

// Formatter is one archive backend. Implementations embed a
// *pflag.FlagSet for their suffix-scoped options.
type Formatter interface {
	Parse(args []string) (err error)
	Parsed() bool
	Args() (args []string)
	NArg() int
	PrintDefaults()

	Decode(reader Reader, size int64) (stack *Stack, err error)
	Encode(writer io.Writer, stack *Stack) (err error)
}

// NewFormatter builds a Formatter for a file suffix.
type NewFormatter func(suffix string) (formatter Formatter)

var formatterMap map[string]NewFormatter

// RegisterFormatter binds a suffix (".ctb", ".pm7m", ...) to a backend.
// Called from the format packages' init functions.
func RegisterFormatter(suffix string, newFormatter NewFormatter) {
	if formatterMap == nil {
		formatterMap = make(map[string]NewFormatter)
	}

	formatterMap[suffix] = newFormatter
}

// FormatterUsage prints the per-suffix option help of every registered
// backend.
func FormatterUsage() {
	if formatterMap == nil {
		return
	}
	list := []string{}
	for suffix := range formatterMap {
		list = append(list, suffix)
	}
	sort.Strings(list)

	for _, suffix := range list {
		newFormatter := formatterMap[suffix]
		fmt.Fprintln(os.Stderr)
		fmt.Fprintf(os.Stderr, "Options for '%s':\n", suffix)
		fmt.Fprintln(os.Stderr)
		newFormatter(suffix).PrintDefaults()
	}
}

// Format pairs a Formatter with the file it reads or writes.
type Format struct {
	Formatter
	Suffix   string
	Filename string
}

// NewFormat selects a backend by filename suffix and parses its arguments.
func NewFormat(filename string, args []string) (format *Format, err error) {
	var formatter Formatter
	var suffix string
	var newFormatter NewFormatter

	for suffix, newFormatter = range formatterMap {
		if strings.HasSuffix(filename, suffix) {
			formatter = newFormatter(suffix)
			break
		}
	}

	if formatter == nil {
		err = fmt.Errorf("%s: file extension unknown", filename)
		return
	}

	err = formatter.Parse(args)
	if err != nil {
		return
	}

	format = &Format{
		Formatter: formatter,
		Suffix:    suffix,
		Filename:  filename,
	}
	return
}

// ReadStack decodes the archive at the format's filename.
func (format *Format) ReadStack() (stack *Stack, err error) {
	reader, err := os.Open(format.Filename)
	if err != nil {
		return
	}
	defer reader.Close()

	filesize, err := reader.Seek(0, io.SeekEnd)
	if err != nil {
		return
	}
	_, err = reader.Seek(0, io.SeekStart)
	if err != nil {
		return
	}

	return format.Decode(reader, filesize)
}

// WriteStack encodes the stack to a temporary file beside the destination
// and renames it into place, so a failed run never leaves a partial
// archive at the final path.
func (format *Format) WriteStack(stack *Stack) (err error) {
	dir := filepath.Dir(format.Filename)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(format.Filename)+".*")
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err = format.Encode(tmp, stack); err != nil {
		return
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	if err = os.Rename(tmpName, format.Filename); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return
}
