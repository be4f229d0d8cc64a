// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// assetDirs are the theme folders exposed under the asset base URL. They
// match the folders the engine rewrites relative references for.
var assetDirs = map[string]bool{
	"css":    true,
	"js":     true,
	"images": true,
	"img":    true,
	"fonts":  true,
}

// Assets serves static theme files from themeDir. Mount it with the asset
// base URL stripped; only files inside assetDirs are reachable, so
// templates and theme configuration are never served.
func Assets(themeDir string) http.Handler {
	files := http.FileServer(filesOnly{http.Dir(filepath.Clean(themeDir))})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		dir, _, ok := strings.Cut(p, "/")
		if !ok || !assetDirs[dir] {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}

// filesOnly hides directories so the file server never lists them.
type filesOnly struct {
	root http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil || info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
