package stream

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Candidate is one playable stream normalized from a backend response.
type Candidate struct {
	Label    string // quality label as reported, e.g. "720p"
	Rank     int    // numeric quality parsed from Label; 0 when unparsable
	URL      string
	Format   string // container format, e.g. "mp4"; may be empty
	Adaptive bool   // master playlist rather than a discrete file
	Fallback bool   // synthetic web-player placeholder
}

// rejectedFormats are containers the target client cannot play.
var rejectedFormats = map[string]bool{
	"webm": true,
	"3gpp": true,
	"3gp":  true,
}

// expiringHosts are hosting domains whose signed URLs expire almost
// immediately; candidates on them are only kept when nothing else survives.
var expiringHosts = []string{"googlevideo.com"}

// qualityRank parses the leading numeric quality from a label
// ("720p" -> 720, "1080p60" -> 1080). Unparsable labels rank 0.
func qualityRank(label string) int {
	i := 0
	for i < len(label) && label[i] >= '0' && label[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0
	}
	n, err := strconv.Atoi(label[:i])
	if err != nil {
		return 0
	}
	return n
}

func isExpiringHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	for _, suffix := range expiringHosts {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}

// filterCandidates drops candidates the target client cannot use: rejected
// container formats, non-HTTPS URLs, and missing quality labels (adaptive
// streams are exempt from the label requirement). Candidates on fast-expiring
// hosts are dropped only when at least one alternative survives.
func filterCandidates(cands []Candidate) []Candidate {
	kept := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if rejectedFormats[strings.ToLower(c.Format)] {
			continue
		}
		u, err := url.Parse(c.URL)
		if err != nil || u.Scheme != "https" {
			continue
		}
		if !c.Adaptive && c.Label == "" {
			continue
		}
		kept = append(kept, c)
	}

	durable := kept[:0:0]
	for _, c := range kept {
		if !isExpiringHost(c.URL) {
			durable = append(durable, c)
		}
	}
	if len(durable) > 0 {
		return durable
	}
	return kept
}

// rankCandidates orders candidates by descending quality rank, stable so that
// equal ranks keep backend declaration order. Adaptive candidates always sort
// first.
func rankCandidates(cands []Candidate) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Adaptive != out[j].Adaptive {
			return out[i].Adaptive
		}
		return out[i].Rank > out[j].Rank
	})
	return out
}
