package http

import (
	_ "embed"
	"encoding/json"
	"net/http"
)

//go:embed menulist.json
var menuListRaw []byte

// HandleMenuList serves the manager portal navigation tree.
func HandleMenuList() http.HandlerFunc {
	var menu any
	if err := json.Unmarshal(menuListRaw, &menu); err != nil {
		// Embedded asset is broken at build time; fail every request loudly
		// rather than panicking at init.
		return func(w http.ResponseWriter, r *http.Request) {
			writeFailure(w, http.StatusInternalServerError, "menu unavailable")
		}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, "menu listed", menu)
	}
}
