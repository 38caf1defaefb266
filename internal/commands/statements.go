package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/extratos/verifier/internal/reconcile"
	"github.com/extratos/verifier/internal/session"
	"github.com/extratos/verifier/internal/source"
)

// statementPaths returns args followed by the exports found in dir.
func statementPaths(args []string, dir string) ([]string, error) {
	paths := append([]string(nil), args...)
	if dir != "" {
		files, err := source.Scan(dir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no statement files given", reconcile.ErrMissingData)
	}
	return paths, nil
}

// loadStatements reads every path into a fresh session, printing one line per export.
func loadStatements(w io.Writer, svc *session.Service, paths []string, encoding string, logger *log.Logger) (session.Session, error) {
	var sess session.Session
	for _, path := range paths {
		logger.Debug("reading statement", "path", path)
		text, err := source.ReadStatement(path, encoding)
		if err != nil {
			return session.Session{}, err
		}
		var info session.StatementInfo
		sess, info = svc.AddStatement(sess, filepath.Base(path), text)
		printStatement(w, info)
	}
	fmt.Fprintf(w, "Total movements: %d\n", len(sess.Records))
	return sess, nil
}
