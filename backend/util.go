package backend

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/wansing/seedling/core"
	"github.com/wansing/seedling/util"
)

const maxCommentRunes = 255

func comment(s string) string {
	return util.Trunc(s, maxCommentRunes)
}

func writeJSON(w http.ResponseWriter, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	if core.IsDenial(err) {
		w.WriteHeader(http.StatusForbidden)
	} else {
		w.WriteHeader(http.StatusInternalServerError)
		err = &core.Denial{Reason: "internal error"} // storage details stay inside
	}
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func readBody(req *http.Request, v interface{}) error {
	defer req.Body.Close()
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		return &core.Denial{Reason: "malformed request body"}
	}
	return nil
}

func queryInt(req *http.Request, key string, fallback int) int {
	if value := req.URL.Query().Get(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func ok(w http.ResponseWriter) error {
	return writeJSON(w, map[string]bool{"ok": true})
}
