package codemod

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/neovim/go-client/nvim"
)

const nvimSocketWait = time.Second

// NvimWriter writes patched files through Neovim so each change lands in the
// buffer's persistent undo history.
type NvimWriter struct {
	client  *nvim.Nvim
	proc    *exec.Cmd // nil when attached to a running editor
	sockDir string
}

// OpenNvimWriter attaches to $NVIM_LISTEN_ADDRESS, or starts a headless nvim
// owned by the writer when no editor is listening.
func OpenNvimWriter(ctx context.Context) (*NvimWriter, error) {
	if addr := os.Getenv("NVIM_LISTEN_ADDRESS"); addr != "" {
		if client, err := nvim.Dial(addr, nvim.DialContext(ctx)); err == nil {
			return &NvimWriter{client: client}, nil
		}
	}

	dir, err := os.MkdirTemp("", "codemod-nvim-")
	if err != nil {
		return nil, err
	}
	sock := filepath.Join(dir, "nvim.sock")
	w := &NvimWriter{
		proc:    exec.Command("nvim", "--headless", "--clean", "--listen", sock),
		sockDir: dir,
	}
	if err := w.proc.Start(); err != nil {
		w.proc = nil
		w.Close()
		return nil, fmt.Errorf("start nvim: %w", err)
	}

	w.client, err = dialSocket(ctx, sock)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("dial nvim: %w", err)
	}

	b := w.client.NewBatch()
	b.Command("set undofile noswapfile")
	b.Command("call mkdir(expand(&undodir), 'p')")
	if err := b.Execute(); err != nil {
		w.Close()
		return nil, fmt.Errorf("configure nvim: %w", err)
	}
	return w, nil
}

// dialSocket waits for a freshly started nvim to create its socket.
func dialSocket(ctx context.Context, sock string) (*nvim.Nvim, error) {
	ctx, cancel := context.WithTimeout(ctx, nvimSocketWait)
	defer cancel()

	tick := time.NewTicker(25 * time.Millisecond)
	defer tick.Stop()
	for {
		if _, err := os.Stat(sock); err == nil {
			return nvim.Dial(sock, nvim.DialContext(ctx))
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", sock, ctx.Err())
		case <-tick.C:
		}
	}
}

// Close detaches from the editor and stops it if the writer started it.
func (w *NvimWriter) Close() error {
	var err error
	if w.client != nil {
		err = w.client.Close()
	}
	if w.proc != nil && w.proc.Process != nil {
		_ = w.proc.Process.Kill()
		_ = w.proc.Wait()
	}
	if w.sockDir != "" {
		os.RemoveAll(w.sockDir)
	}
	return err
}

// WriteFile loads path into a buffer, replaces its lines with content and
// writes it back.
func (w *NvimWriter) WriteFile(path string, content []byte) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}

	lines, eol := bufferLines(content)
	b := w.client.NewBatch()
	b.Command("edit! " + escapePath(absPath))
	b.SetBufferLines(0, 0, -1, true, lines)
	if eol {
		b.Command("setlocal fixendofline")
	} else {
		b.Command("setlocal nofixendofline noendofline")
	}
	b.Command("write")
	if err := b.Execute(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// bufferLines splits content into buffer lines and reports whether it ended
// with a newline.
func bufferLines(content []byte) ([][]byte, bool) {
	eol := bytes.HasSuffix(content, []byte("\n"))
	content = bytes.TrimSuffix(content, []byte("\n"))
	return bytes.Split(content, []byte("\n")), eol
}

func escapePath(p string) string {
	return strings.NewReplacer(" ", `\ `, "%", `\%`, "#", `\#`).Replace(p)
}
