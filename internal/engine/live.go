package engine

import (
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/tartampluch/go-sched/internal/config"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Table names used in logs and metrics.
const (
	TableSpecial  = "special"
	TableOverride = "override"
	TableFlag     = "flag"
)

// LiveTables reads the runtime-editable tables. Every call re-reads the file
// so edits show up without a restart; any read problem degrades to "no data".
// A nil *LiveTables behaves as if every table were empty.
type LiveTables struct {
	Fs           afero.Fs
	SpecialPath  string
	OverridePath string
	FlagPath     string
	Recorder     Recorder
}

// NewLiveTables wires the three editable tables on fsys.
func NewLiveTables(fsys afero.Fs, specialPath, overridePath, flagPath string) *LiveTables {
	return &LiveTables{
		Fs:           fsys,
		SpecialPath:  specialPath,
		OverridePath: overridePath,
		FlagPath:     flagPath,
		Recorder:     NopRecorder{},
	}
}

// SpecialsFor returns the special codes for date in file order, or nil.
func (t *LiveTables) SpecialsFor(date time.Time) []string {
	if t == nil {
		return nil
	}
	var specials []string
	t.scan(TableSpecial, t.SpecialPath, dateKey(date), func(rec []string) bool {
		if len(rec) < 2 {
			return false
		}
		specials = append(specials, strings.TrimSpace(rec[1]))
		return true
	})
	return specials
}

// OverridesFor returns the override rows for date in file order, or nil.
func (t *LiveTables) OverridesFor(date time.Time) []OverrideRow {
	if t == nil {
		return nil
	}
	var rows []OverrideRow
	t.scan(TableOverride, t.OverridePath, dateKey(date), func(rec []string) bool {
		if len(rec) < 2 {
			return false
		}
		row := OverrideRow{Directive: strings.TrimSpace(rec[1])}
		if len(rec) > 2 {
			row.Payload = strings.TrimSpace(rec[2])
		}
		rows = append(rows, row)
		return true
	})
	return rows
}

// IsFlagged reports whether date appears in the flag table.
func (t *LiveTables) IsFlagged(date time.Time) bool {
	if t == nil {
		return false
	}
	found := false
	t.scan(TableFlag, t.FlagPath, dateKey(date), func([]string) bool {
		found = true
		return true
	})
	return found
}

// scan calls fn for every record whose first field equals key. fn returns
// false for a row it cannot use; such rows are logged and counted.
func (t *LiveTables) scan(table, path, key string, fn func(rec []string) bool) {
	log := slog.With(
		config.LogKeyComponent, config.CompTables,
		config.LogKeyTable, table,
		config.LogKeyFile, path,
	)
	if t.Fs == nil || path == "" {
		return
	}

	f, err := t.Fs.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug(config.MsgTableMissing)
		} else {
			log.Warn(config.MsgTableMissing, config.LogKeyError, err)
			t.recorder().TableDegraded(table, ReasonUnreadable)
		}
		return
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(stripBOM(f))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	bad := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				log.Warn(config.MsgTableMissing, config.LogKeyError, err)
				t.recorder().TableDegraded(table, ReasonUnreadable)
				return
			}
			log.Debug(config.MsgRowSkipped, config.LogKeyRow, perr.Line, config.LogKeyError, err)
			t.recorder().TableDegraded(table, ReasonMalformed)
			if bad++; bad >= config.MaxRowErrors {
				log.Warn(config.MsgTooManyBadRows, config.LogKeyRows, bad)
				return
			}
			continue
		}

		if strings.TrimSpace(rec[0]) != key {
			continue
		}
		if !fn(rec) {
			line, _ := reader.FieldPos(0)
			log.Debug(config.MsgRowSkipped, config.LogKeyRow, line)
			t.recorder().TableDegraded(table, ReasonMalformed)
		}
	}
}

// stripBOM drops a leading UTF-8 byte order mark, as written by spreadsheet
// exports, so the first row's date key still matches.
func stripBOM(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

func (t *LiveTables) recorder() Recorder {
	if t.Recorder == nil {
		return NopRecorder{}
	}
	return t.Recorder
}
