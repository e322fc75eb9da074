// Package server contains misc server utilities.
package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
)

// ReplyWithFile replies to the client request by serving the file at path.
// A missing file is answered with 404.
func ReplyWithFile(w http.ResponseWriter, r *http.Request, path string) {
	filePath, err := filepath.Abs(path)
	if err != nil {
		fstr := fmt.Sprintf("unable to compute abspath of file %s %s", path, err)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusInternalServerError)
		return
	}

	f, err := os.Open(filePath)
	if err != nil {
		http.Error(w, fmt.Sprintf("source file missing %s", filePath), http.StatusNotFound)
		return
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		fstr := fmt.Sprintf("error retrieving source file stats %s", err)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, filepath.Base(filePath), stat.ModTime(), f)
}

// FileHandler serves the file at path, resolved on every request
func FileHandler(path func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ReplyWithFile(w, r, path())
	}
}
