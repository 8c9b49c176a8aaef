// Package mocksite is a small local stand-in for the transliteration website. It serves a page
// with the same text area as the real one and transliterates word by word from a fixed
// dictionary, passing unknown words through unchanged.
package mocksite

import (
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gorilla/mux"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/translit-harness/singlish-e2e/framework"
)

const (
	PagePath          = "/"
	TransliteratePath = "/api/transliterate"
	Placeholder       = "Input Your Singlish Text Here."
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Swift Translator (local)</title></head>
<body>
<h1>Singlish to Sinhala</h1>
<textarea placeholder="{{.Placeholder}}" rows="6" cols="60"></textarea>
<div id="output"></div>
<script>
const input = document.querySelector("textarea");
const output = document.getElementById("output");
let seq = 0;
input.addEventListener("input", async () => {
  const mine = ++seq;
  const resp = await fetch("{{.Path}}?text=" + encodeURIComponent(input.value));
  const data = await resp.json();
  if (mine === seq) {
    output.textContent = data.output;
  }
});
</script>
</body>
</html>
`))

// TranslatorService is an http.Handler for the stand-in site.
type TranslatorService struct {
	dictionary  map[string]string
	delay       time.Duration
	handler     http.Handler
	debugLogger framework.Logger
	lock        sync.RWMutex
}

func NewTranslatorService(dictionary map[string]string, debugLogger framework.Logger) *TranslatorService {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	s := &TranslatorService{debugLogger: debugLogger}
	s.SetDictionary(dictionary)

	router := mux.NewRouter()
	router.HandleFunc(PagePath, s.servePage).Methods("GET")
	router.HandleFunc(TransliteratePath, s.serveTransliterate).Methods("GET")
	s.handler = router
	return s
}

func (s *TranslatorService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// SetDictionary replaces the word list. The map is copied.
func (s *TranslatorService) SetDictionary(dictionary map[string]string) {
	d := make(map[string]string, len(dictionary))
	for k, v := range dictionary {
		d[k] = v
	}
	s.lock.Lock()
	s.dictionary = d
	s.lock.Unlock()
}

// SetDelay makes every transliteration response wait, to imitate a slow site.
func (s *TranslatorService) SetDelay(delay time.Duration) {
	s.lock.Lock()
	s.delay = delay
	s.lock.Unlock()
}

// Transliterate maps every run of letters that is in the dictionary and keeps everything else.
func (s *TranslatorService) Transliterate(text string) string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	var out strings.Builder
	var word []rune
	flush := func() {
		if len(word) == 0 {
			return
		}
		w := string(word)
		if t, ok := s.dictionary[w]; ok {
			out.WriteString(t)
		} else {
			out.WriteString(w)
		}
		word = word[:0]
	}
	for _, r := range text {
		if unicode.IsLetter(r) {
			word = append(word, r)
			continue
		}
		flush()
		out.WriteRune(r)
	}
	flush()
	return out.String()
}

func (s *TranslatorService) servePage(w http.ResponseWriter, r *http.Request) {
	s.debugLogger.Printf("[mocksite] serving page to %s", r.RemoteAddr)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = pageTemplate.Execute(w, struct{ Placeholder, Path string }{Placeholder, TransliteratePath})
}

func (s *TranslatorService) serveTransliterate(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	s.lock.RLock()
	delay := s.delay
	s.lock.RUnlock()
	if delay > 0 {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(delay):
		}
	}

	result := s.Transliterate(text)
	s.debugLogger.Printf("[mocksite] transliterated %q to %q", text, result)

	jw := jwriter.NewWriter()
	obj := jw.Object()
	obj.Name("input").String(text)
	obj.Name("output").String(result)
	obj.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(jw.Bytes())
}
