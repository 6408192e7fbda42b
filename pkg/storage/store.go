package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path"
	"syscall"

	"github.com/pkg/errors"

	"dynpage/internal/util"
	"dynpage/pkg/page"
)

// DBSig identifies a dynpage data file in its meta page.
const DBSig = "dynpage-store01"

var errBadMetaPage = errors.New("storage: bad meta page")

// Store is a whole-page, mmap'd page store: it owns the file, the free
// list, and the meta page, and hands out page.Cursor views over individual
// pages rather than a fixed-layout node struct, so pkg/tree can lay out
// dynamic-size node pages on top of it.
type Store struct {
	Path     string
	pageSize int

	Fsync func(int) error // overridable; for testing
	fd    int

	mmap struct {
		total  int
		chunks [][]byte
	}

	page struct {
		flushed uint64
		nappend uint64
		updates map[uint64][]byte
	}

	root uint64
	free *FreeList

	failed bool
}

// NewStore constructs a Store for the given file path and page size. Call
// Open before use.
func NewStore(path string, pageSize int) *Store {
	return &Store{
		Path:     path,
		pageSize: pageSize,
		free:     NewFreeList(pageSize),
	}
}

// PageSize returns the fixed page size this store was opened with.
func (db *Store) PageSize() int { return db.pageSize }

// Root returns the current root page pointer, or 0 for an empty tree.
func (db *Store) Root() uint64 { return db.root }

// SetRoot updates the in-memory root pointer; it takes effect on the next
// successful Commit.
func (db *Store) SetRoot(root uint64) { db.root = root }

// StableGeneration and UnstableGeneration expose the free list's
// generation pair for pkg/gsp's child-pointer codec.
func (db *Store) StableGeneration() uint64   { return db.free.StableGeneration() }
func (db *Store) UnstableGeneration() uint64 { return db.free.UnstableGeneration() }

// pageAlloc is the allocator callback: reuse a free-listed page if one is
// available, otherwise append a new one.
func (db *Store) pageAlloc(data []byte) uint64 {
	if ptr := db.free.PopHead(); ptr != 0 {
		db.page.updates[ptr] = data
		return ptr
	}
	return db.pageAppend(data)
}

func (db *Store) pageAppend(data []byte) uint64 {
	util.Assert(len(data) == db.pageSize, "Store.pageAppend: wrong page size")
	ptr := db.page.flushed + db.page.nappend
	db.page.nappend++
	util.Assert(db.page.updates[ptr] == nil, "Store.pageAppend: page already exists")
	db.page.updates[ptr] = data
	return ptr
}

func (db *Store) pageWrite(ptr uint64) []byte {
	if data, ok := db.page.updates[ptr]; ok {
		return data
	}
	data := make([]byte, db.pageSize)
	copy(data, db.pageReadFile(ptr))
	db.page.updates[ptr] = data
	return data
}

func (db *Store) pageRead(ptr uint64) []byte {
	if data, ok := db.page.updates[ptr]; ok {
		return data
	}
	return db.pageReadFile(ptr)
}

func (db *Store) pageReadFile(ptr uint64) []byte {
	start := uint64(0)
	for _, chunk := range db.mmap.chunks {
		end := start + uint64(len(chunk))/uint64(db.pageSize)
		if ptr < end {
			offset := (ptr - start) * uint64(db.pageSize)
			return chunk[offset : offset+uint64(db.pageSize)]
		}
		start = end
	}
	panic("storage: page pointer out of range")
}

// Alloc allocates a fresh, zeroed page and returns its pointer together
// with a cursor over it.
func (db *Store) Alloc() (uint64, *page.Cursor) {
	data := make([]byte, db.pageSize)
	ptr := db.pageAlloc(data)
	return ptr, page.NewCursor(data)
}

// Free returns a page to the free list.
func (db *Store) Free(ptr uint64) {
	db.free.PushTail(ptr)
}

// NewCursor returns a cursor over the page currently stored at ptr,
// tracking any pending in-memory update.
func (db *Store) NewCursor(ptr uint64) *page.Cursor {
	return page.NewCursor(db.pageWrite(ptr))
}

// ReadCursor is like NewCursor but does not mark the page dirty; used for
// read-only traversals.
func (db *Store) ReadCursor(ptr uint64) *page.Cursor {
	return page.NewCursor(db.pageRead(ptr))
}

/*
the 1st page stores the root pointer and other auxiliary data.
| sig | root_ptr | page_used | head_page | head_seq | tail_page | tail_seq |
| 16B |    8B    |     8B    |     8B    |    8B    |     8B    |    8B    |
*/
func (db *Store) loadMeta(data []byte) {
	db.root = binary.LittleEndian.Uint64(data[16:24])
	db.page.flushed = binary.LittleEndian.Uint64(data[24:32])
	db.free.headPage = binary.LittleEndian.Uint64(data[32:40])
	db.free.headSeq = binary.LittleEndian.Uint64(data[40:48])
	db.free.tailPage = binary.LittleEndian.Uint64(data[48:56])
	db.free.tailSeq = binary.LittleEndian.Uint64(data[56:64])
}

func (db *Store) saveMeta() []byte {
	data := make([]byte, 64)
	copy(data[:16], []byte(DBSig))
	binary.LittleEndian.PutUint64(data[16:24], db.root)
	binary.LittleEndian.PutUint64(data[24:32], db.page.flushed)
	binary.LittleEndian.PutUint64(data[32:40], db.free.headPage)
	binary.LittleEndian.PutUint64(data[40:48], db.free.headSeq)
	binary.LittleEndian.PutUint64(data[48:56], db.free.tailPage)
	binary.LittleEndian.PutUint64(data[56:64], db.free.tailSeq)
	return data
}

func (db *Store) readRoot(fileSize int64) error {
	if fileSize%int64(db.pageSize) != 0 {
		return errors.New("storage: file size is not a multiple of the page size")
	}
	if fileSize == 0 {
		db.page.flushed = 2
		db.free.headPage = 1
		db.free.tailPage = 1
		return nil
	}
	data := db.mmap.chunks[0]
	db.loadMeta(data)
	db.free.SetMaxSeq()

	var sig [16]byte
	copy(sig[:], DBSig)
	bad := !bytes.Equal(sig[:], data[:16])
	maxpages := uint64(fileSize / int64(db.pageSize))
	bad = bad || !(0 < db.page.flushed && db.page.flushed <= maxpages)
	bad = bad || !(db.root < db.page.flushed)
	bad = bad || !(0 < db.free.headPage && db.free.headPage < db.page.flushed)
	bad = bad || !(0 < db.free.tailPage && db.free.tailPage < db.page.flushed)
	if bad {
		return errBadMetaPage
	}
	return nil
}

func (db *Store) updateRootPage() error {
	if _, err := syscall.Pwrite(db.fd, db.saveMeta(), 0); err != nil {
		return errors.Wrap(err, "storage: write meta page")
	}
	return nil
}

func (db *Store) extendMmap(size int) error {
	if size <= db.mmap.total {
		return nil
	}
	alloc := max(db.mmap.total, 64<<20)
	for db.mmap.total+alloc < size {
		alloc *= 2
	}
	chunk, err := syscall.Mmap(
		db.fd, int64(db.mmap.total), alloc,
		syscall.PROT_READ, syscall.MAP_SHARED,
	)
	if err != nil {
		return errors.Wrap(err, "storage: mmap")
	}
	db.mmap.total += alloc
	db.mmap.chunks = append(db.mmap.chunks, chunk)
	return nil
}

func (db *Store) writePages() error {
	size := int(db.page.flushed+db.page.nappend) * db.pageSize
	if err := db.extendMmap(size); err != nil {
		return err
	}
	for ptr, data := range db.page.updates {
		offset := int64(ptr) * int64(db.pageSize)
		if _, err := syscall.Pwrite(db.fd, data, offset); err != nil {
			return err
		}
	}
	db.page.flushed += db.page.nappend
	db.page.nappend = 0
	db.page.updates = map[uint64][]byte{}
	return nil
}

func (db *Store) updateFile() error {
	if err := db.writePages(); err != nil {
		return err
	}
	if err := db.Fsync(db.fd); err != nil {
		return err
	}
	if err := db.updateRootPage(); err != nil {
		return err
	}
	if err := db.Fsync(db.fd); err != nil {
		return err
	}
	db.free.SetMaxSeq()
	return nil
}

// Commit persists pending page allocations/writes and the new root
// pointer via a two-phase write/fsync/meta/fsync ordering, reverting
// in-memory state on failure so reads stay consistent.
//
// There is a single writer and, so far, no concurrent MVCC reader that
// pins an older generation, so every successful commit both publishes
// and immediately retires its own generation: SetMaxVer(curVer+1) moves
// both the stable and the unstable generation to curVer+1, so pages freed
// by the commit that just landed become reusable once it is durable.
// A future concurrent reader would instead pass the oldest generation
// it still has open (DESIGN.md).
func (db *Store) Commit() error {
	meta := db.saveMeta()
	err := db.updateOrRevert(meta)
	if err == nil {
		db.free.SetMaxVer(db.free.UnstableGeneration() + 1)
	}
	return err
}

func (db *Store) updateOrRevert(meta []byte) error {
	if db.failed {
		if _, err := syscall.Pwrite(db.fd, meta, 0); err != nil {
			return errors.Wrap(err, "storage: rewrite meta page")
		}
		if err := db.Fsync(db.fd); err != nil {
			return err
		}
		db.failed = false
	}
	err := db.updateFile()
	if err != nil {
		db.failed = true
		db.loadMeta(meta)
		db.page.nappend = 0
		db.page.updates = map[uint64][]byte{}
	}
	return err
}

func createFileSync(file string) (int, error) {
	flags := os.O_RDONLY | syscall.O_DIRECTORY
	dirfd, err := syscall.Open(path.Dir(file), flags, 0o644)
	if err != nil {
		return -1, errors.Wrap(err, "storage: open directory")
	}
	defer syscall.Close(dirfd)

	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return -1, errors.Wrap(err, "storage: open file")
	}
	return int(f.Fd()), nil
}

// Open opens or creates the backing file, maps it, and loads the meta
// page (or initializes a fresh one for an empty file).
func (db *Store) Open() error {
	if db.Fsync == nil {
		db.Fsync = syscall.Fsync
	}
	db.page.updates = map[uint64][]byte{}
	db.free.SetCallbacks(db.pageRead, db.pageAppend, db.pageWrite)

	var err error
	if db.fd, err = createFileSync(db.Path); err != nil {
		return err
	}

	finfo := syscall.Stat_t{}
	if err = syscall.Fstat(db.fd, &finfo); err != nil {
		db.Close()
		return errors.Wrap(err, "storage: fstat")
	}
	if err = db.extendMmap(int(finfo.Size)); err != nil {
		db.Close()
		return err
	}
	if err = db.readRoot(finfo.Size); err != nil {
		db.Close()
		return fmt.Errorf("Store.Open: %w", err)
	}
	return nil
}

// Close unmaps the file and closes its descriptor.
func (db *Store) Close() {
	for _, chunk := range db.mmap.chunks {
		err := syscall.Munmap(chunk)
		util.Assert(err == nil, "Store.Close: munmap failed")
	}
	_ = syscall.Close(db.fd)
}
