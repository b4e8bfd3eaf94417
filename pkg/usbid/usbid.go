package usbid

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultPaths lists the standard locations for the USB ID database.
var DefaultPaths = []string{
	"/usr/share/hwdata/usb.ids",
	"/var/lib/usbutils/usb.ids",
	"/usr/share/misc/usb.ids",
}

// ErrNotFound indicates none of the searched paths held a database.
var ErrNotFound = errors.New("usb.ids database not found")

// Database holds vendor and product names. It is immutable once parsed.
type Database struct {
	path     string
	vendors  map[uint16]string
	products map[uint32]string
}

// Load parses the first database found in paths, or in [DefaultPaths] when
// none are given.
func Load(paths ...string) (*Database, error) {
	if len(paths) == 0 {
		paths = DefaultPaths
	}
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		db, err := Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		db.path = path
		return db, nil
	}
	return nil, ErrNotFound
}

// Parse reads a database in usb.ids format.
func Parse(r io.Reader) (*Database, error) {
	db := &Database{
		vendors:  make(map[uint16]string),
		products: make(map[uint32]string),
	}
	scanner := bufio.NewScanner(r)
	vendor, inVendor := uint16(0), false
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		if line[0] == '\t' {
			// Interface lines under a product are indented twice.
			if !inVendor || strings.HasPrefix(line, "\t\t") {
				continue
			}
			if id, name, ok := entry(line[1:]); ok {
				db.products[key(vendor, id)] = name
			}
			continue
		}
		id, name, ok := entry(line)
		if !ok {
			// A section keyword such as "C 03  Human Interface Device".
			inVendor = false
			continue
		}
		vendor, inVendor = id, true
		db.vendors[id] = name
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return db, nil
}

// entry splits "xxxx  Name".
func entry(s string) (uint16, string, bool) {
	if len(s) < 6 || s[4] != ' ' {
		return 0, "", false
	}
	id, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, "", false
	}
	return uint16(id), strings.TrimSpace(s[5:]), true
}

func key(vid, pid uint16) uint32 {
	return uint32(vid)<<16 | uint32(pid)
}

// Path returns the file the database was loaded from, if any.
func (db *Database) Path() string {
	if db == nil {
		return ""
	}
	return db.path
}

// Vendor returns the vendor name for vid, or "" if unknown.
func (db *Database) Vendor(vid uint16) string {
	if db == nil {
		return ""
	}
	return db.vendors[vid]
}

// Product returns the product name for vid:pid, or "" if unknown.
func (db *Database) Product(vid, pid uint16) string {
	if db == nil {
		return ""
	}
	return db.products[key(vid, pid)]
}

// Len returns the number of vendors and products known.
func (db *Database) Len() (vendors, products int) {
	if db == nil {
		return 0, 0
	}
	return len(db.vendors), len(db.products)
}
