package storage

import (
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"
)

// FTPStore stores objects on a private FTP server under a root directory.
// The connection is established lazily and shared; jlaffaye/ftp server
// connections are not safe for concurrent use, so every operation holds
// the mutex.
type FTPStore struct {
	host     string
	port     string
	user     string
	password string
	root     string

	mu   sync.Mutex
	conn *ftp.ServerConn
}

var _ ObjectStore = (*FTPStore)(nil)

func NewFTPStore(host, port, user, password, root string) *FTPStore {
	return &FTPStore{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		root:     root,
	}
}

func (s *FTPStore) connect() error {
	if s.conn != nil {
		return nil
	}

	addr := s.host + ":" + s.port
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(10*time.Second))
	if err != nil {
		return fmt.Errorf("failed to connect to FTP: %w", err)
	}

	if err := conn.Login(s.user, s.password); err != nil {
		conn.Quit()
		return fmt.Errorf("failed to login to FTP: %w", err)
	}

	s.conn = conn
	return nil
}

func (s *FTPStore) remotePath(objectPath string) string {
	return path.Join(s.root, objectPath)
}

func (s *FTPStore) Put(objectPath string, data io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.connect(); err != nil {
		return err
	}

	remote := s.remotePath(objectPath)
	s.ensureDirs(remote)

	// Stor overwrites an existing file, which gives Put its upsert
	// semantics.
	if err := s.conn.Stor(remote, data); err != nil {
		s.reset()
		return fmt.Errorf("failed to upload file: %w", err)
	}

	return nil
}

func (s *FTPStore) Fetch(objectPath string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.connect(); err != nil {
		return nil, err
	}

	resp, err := s.conn.Retr(s.remotePath(objectPath))
	if err != nil {
		s.reset()
		return nil, fmt.Errorf("failed to download file: %w", err)
	}

	return resp, nil
}

func (s *FTPStore) Remove(objectPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.connect(); err != nil {
		return err
	}

	if err := s.conn.Delete(s.remotePath(objectPath)); err != nil {
		s.reset()
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// ensureDirs creates the parent directories of remote one segment at a
// time. MakeDir fails on segments that already exist; those errors are
// ignored.
func (s *FTPStore) ensureDirs(remote string) {
	dir := path.Dir(remote)
	if dir == "." || dir == "/" {
		return
	}

	segments := strings.Split(dir, "/")
	current := ""
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		current = path.Join(current, segment)
		s.conn.MakeDir(current)
	}
}

// reset drops the cached connection after a failed operation so the next
// call redials.
func (s *FTPStore) reset() {
	if s.conn != nil {
		s.conn.Quit()
		s.conn = nil
	}
}

func (s *FTPStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		err := s.conn.Quit()
		s.conn = nil
		return err
	}
	return nil
}
