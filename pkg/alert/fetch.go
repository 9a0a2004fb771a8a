package alert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"waira/entities"
)

var (
	ErrDomainNotAllowed = errors.New("alert: domain not allowed")
	ErrPageTooLarge     = errors.New("alert: page too large")
	ErrUnsupportedType  = errors.New("alert: unsupported content type")
)

// Page is the readable part of a fetched notice.
type Page struct {
	URL   string
	Host  string
	Title string
	Text  string
}

// Fetcher downloads notices from an allowlist of hosts.
type Fetcher struct {
	allow    map[string]bool
	maxBytes int64
	client   *http.Client
}

func NewFetcher(allowed []string, maxBytes int64) *Fetcher {
	allow := map[string]bool{}
	for _, h := range allowed {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			allow[h] = true
		}
	}
	if maxBytes <= 0 {
		maxBytes = 1_500_000
	}
	f := &Fetcher{allow: allow, maxBytes: maxBytes}
	f.client = &http.Client{Timeout: 20 * time.Second, CheckRedirect: f.checkRedirect}
	return f
}

// checkRedirect keeps every hop on the allowlist.
func (f *Fetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return errors.New("alert: too many redirects")
	}
	if host := strings.ToLower(req.URL.Host); !f.allow[host] {
		return fmt.Errorf("%w: redirect to %s", ErrDomainNotAllowed, host)
	}
	return nil
}

func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Page{}, fmt.Errorf("alert: bad url %q", rawURL)
	}
	host := strings.ToLower(u.Host)
	if !f.allow[host] {
		return Page{}, fmt.Errorf("%w: %s", ErrDomainNotAllowed, host)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("alert: %s answered %d", host, resp.StatusCode)
	}
	if resp.ContentLength > f.maxBytes {
		return Page{}, ErrPageTooLarge
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return Page{}, err
	}
	if int64(len(b)) > f.maxBytes {
		return Page{}, ErrPageTooLarge
	}

	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	p := Page{URL: rawURL, Host: host}
	switch {
	case strings.Contains(ct, "text/plain"):
		p.Text = cleanWhitespace(string(b))
		p.Title = firstLine(p.Text)
	case strings.Contains(ct, "text/html"):
		p.Title, p.Text, err = mainText(b)
		if err != nil {
			return Page{}, err
		}
	default:
		return Page{}, fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
	}
	return p, nil
}

func mainText(b []byte) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return "", "", err
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		title = h1
	}

	var parts []string
	sel := doc.Find("main, article")
	if sel.Length() == 0 {
		sel = doc.Selection
	}
	sel.Find("h2,h3,p,li").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return title, cleanWhitespace(strings.Join(parts, "\n")), nil
}

var wsRX = regexp.MustCompile(`\s+\n`)

func cleanWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.TrimSpace(wsRX.ReplaceAllString(s, "\n"))
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return truncate(line, 120)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// word matches w as a whole word, accents included.
func word(w string) *regexp.Regexp {
	return regexp.MustCompile(`(^|[^\p{L}])` + w + `($|[^\p{L}])`)
}

// departments is checked in order; the first one named in a notice is its
// location.
var departments = []string{
	"Amazonas", "Áncash", "Apurímac", "Arequipa", "Ayacucho", "Cajamarca", "Callao",
	"Cusco", "Huancavelica", "Huánuco", "Ica", "Junín", "La Libertad", "Lambayeque",
	"Lima", "Loreto", "Madre de Dios", "Moquegua", "Pasco", "Piura", "Puno",
	"San Martín", "Tacna", "Tumbes", "Ucayali",
}

var (
	departmentRX = func() []*regexp.Regexp {
		out := make([]*regexp.Regexp, len(departments))
		for i, d := range departments {
			out[i] = word(regexp.QuoteMeta(strings.ToLower(d)))
		}
		return out
	}()
	cropRX = func() map[string]*regexp.Regexp {
		out := map[string]*regexp.Regexp{}
		for _, c := range entities.CropTypes {
			out[c] = word(c)
		}
		out["maiz"] = word("ma[ií]z")
		return out
	}()
)

var categoryWords = []struct {
	category string
	words    []string
}{
	{"climatica", []string{"helada", "granizo", "lluvia", "sequía", "sequia", "friaje", "senamhi", "temperatura", "nevada"}},
	{"precios", []string{"precio", "cotización", "cotizacion"}},
	{"infraestructura", []string{"carretera", "puente", "huaico", "vía", "bloqueo"}},
	{"suministro", []string{"fertilizante", "semilla", "abastecimiento", "escasez", "urea"}},
	{"normativa", []string{"resolución", "resolucion", "decreto", "norma"}},
}

var severityWords = []struct {
	severity entities.AlertSeverity
	words    []string
}{
	{entities.SeverityCritical, []string{"alerta roja", "emergencia", "nivel 4"}},
	{entities.SeverityHigh, []string{"alerta naranja", "nivel 3", "peligro"}},
	{entities.SeverityMedium, []string{"alerta amarilla", "nivel 2", "aviso"}},
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// FromPage classifies a fetched notice by keywords. Anything that names no
// department is national and anything that names no crop affects all.
func FromPage(p Page, now time.Time) entities.Alert {
	all := strings.ToLower(p.Title + "\n" + p.Text)

	a := entities.Alert{
		Title:       truncate(p.Title, 200),
		Description: truncate(strings.ReplaceAll(p.Text, "\n", " "), 400),
		Category:    "mercado",
		Severity:    entities.SeverityInfo,
		Location:    nationwide,
		Source:      p.Host,
		SourceURL:   p.URL,
		Active:      true,
		FromWeb:     true,
		CreatedAt:   now,
	}
	if a.Title == "" {
		a.Title = p.Host
	}
	for _, c := range categoryWords {
		if containsAny(all, c.words) {
			a.Category = c.category
			break
		}
	}
	for _, s := range severityWords {
		if containsAny(all, s.words) {
			a.Severity = s.severity
			break
		}
	}
	for i, rx := range departmentRX {
		if rx.MatchString(all) {
			a.Location = departments[i]
			break
		}
	}
	for _, c := range entities.CropTypes {
		if cropRX[c].MatchString(all) {
			a.AffectedCrops = append(a.AffectedCrops, c)
		}
	}
	if len(a.AffectedCrops) == 0 {
		a.AffectedCrops = []string{allCrops}
	}
	return a
}
