package fallback

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"soloq-tracker/internal/api"
	"soloq-tracker/internal/config"
	"soloq-tracker/internal/constants"
	"soloq-tracker/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/valyala/fasthttp"
)

// Tier names are matched before divisions so "Master 250LP" does not read a
// division out of the LP figure.
var (
	tierPattern     = regexp.MustCompile(`(?i)\b(Iron|Bronze|Silver|Gold|Platinum|Emerald|Diamond|Grandmaster|Master|Challenger)\b(?:\s+([1-4])\b)?`)
	lpPattern       = regexp.MustCompile(`(\d+)\s*LP`)
	metaWinLoss     = regexp.MustCompile(`(\d+)\s*Win\s+(\d+)\s*Lose`)
	blockWinLoss    = regexp.MustCompile(`(\d+)W\s+(\d+)L`)
	kdaPattern      = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*:\s*1`)
	championWinRate = regexp.MustCompile(`^(.+?)\s*-\s*(?:Win Rate\s*)?(\d+)%`)
)

const maxContainerWalk = 6

var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept-Language": "en-US,en;q=0.9",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Referer":         "https://www.op.gg/",
}

// PageSource scrapes the public op.gg profile page. It is best effort:
// anything it cannot read with confidence stays unknown.
type PageSource struct {
	http    *api.Client
	baseURL string
}

func NewPageSource(http *api.Client, cfg *config.Config) *PageSource {
	return &PageSource{http: http, baseURL: cfg.OpggBaseURL}
}

func (s *PageSource) Name() string {
	return "opgg-page"
}

// ProfileURL is the canonical public profile page for a player.
func ProfileURL(baseURL string, id domain.PlayerIdentity) string {
	return fmt.Sprintf("%s/summoners/%s/%s-%s", baseURL, constants.OpggRegion, url.PathEscape(id.Name), url.PathEscape(id.Tag))
}

func (s *PageSource) Lookup(ctx context.Context, id domain.PlayerIdentity) (Partial, error) {
	body, err := s.http.Do(ctx, api.Request{
		Method:  fasthttp.MethodGet,
		URL:     ProfileURL(s.baseURL, id),
		Headers: browserHeaders,
	})
	if err != nil {
		return Partial{}, fmt.Errorf("profile page fetch failed: %w", err)
	}
	return ParseProfilePage(body)
}

// ParseProfilePage extracts what it can from a profile page, trying the meta
// description, then the embedded __NEXT_DATA__ JSON, then the visible
// "Ranked Solo" block.
func ParseProfilePage(page []byte) (Partial, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return Partial{}, fmt.Errorf("failed to parse profile page: %w", err)
	}

	var p Partial

	if content, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok && content != "" {
		parseMetaDescription(content, &p)
	}

	if p.Tier == nil {
		if raw := strings.TrimSpace(doc.Find("script#__NEXT_DATA__").First().Text()); raw != "" {
			parseNextData(raw, &p)
		}
	}

	if p.Tier == nil {
		parseRankedBlock(doc, &p)
	}

	return p, nil
}

// Meta description format: "Name#Tag / Gold 2 55LP / 10Win 8Lose Win rate 55% / Ahri - 60%, Zed - 50% ..."
func parseMetaDescription(content string, p *Partial) {
	parts := strings.Split(content, " / ")

	// The first segment is Name#Tag, which may contain any text.
	rankText := content
	if len(parts) >= 2 {
		rankText = strings.Join(parts[1:min(len(parts), 3)], " / ")
	}

	if len(parts) >= 2 && strings.Contains(parts[1], "Unranked") {
		p.Unranked()
	} else {
		parseRankText(rankText, metaWinLoss, p)
	}

	if m := kdaPattern.FindStringSubmatch(content); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.KDA = &v
		}
	}

	if len(parts) >= 4 {
		for _, raw := range strings.Split(parts[3], ",") {
			m := championWinRate.FindStringSubmatch(strings.TrimSpace(raw))
			if m == nil {
				continue
			}
			rate, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			p.TopChampions = append(p.TopChampions, domain.TopChampion{
				Name:           strings.TrimSpace(m[1]),
				WinRatePercent: rate,
			})
			if len(p.TopChampions) == constants.TopChampionsLimit {
				break
			}
		}
	}
}

type nextData struct {
	Props struct {
		PageProps struct {
			Data profileData `json:"data"`
		} `json:"pageProps"`
	} `json:"props"`
}

func parseNextData(raw string, p *Partial) {
	var nd nextData
	if err := json.Unmarshal([]byte(raw), &nd); err != nil {
		return
	}
	p.fillFrom(nd.Props.PageProps.Data.toPartial())
}

func parseRankedBlock(doc *goquery.Document, p *Partial) {
	header := doc.Find("body *").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Children().Length() == 0 && strings.Contains(s.Text(), "Ranked Solo")
	}).First()
	if header.Length() == 0 {
		return
	}

	container := header
	for i := 0; i < maxContainerWalk && container.Length() > 0; i++ {
		text := strings.Join(strings.Fields(container.Text()), " ")
		if strings.Contains(text, "Unranked") {
			p.Unranked()
			return
		}
		if strings.Contains(text, "LP") {
			parseRankText(text, blockWinLoss, p)
			return
		}
		container = container.Parent()
	}
}

func parseRankText(text string, winLoss *regexp.Regexp, p *Partial) {
	m := tierPattern.FindStringSubmatch(text)
	if m == nil {
		return
	}
	p.Tier = ptr(strings.ToUpper(m[1]))
	p.Rank = ptr(normalizeDivision(m[2]))

	if lp := lpPattern.FindStringSubmatch(text); lp != nil {
		p.LP = atoiPtr(lp[1])
	}
	if wl := winLoss.FindStringSubmatch(text); wl != nil {
		p.Wins = atoiPtr(wl[1])
		p.Losses = atoiPtr(wl[2])
	}
}
