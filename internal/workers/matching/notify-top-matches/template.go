// internal/workers/matching/notify-top-matches/template.go
package notifytopmatches

import (
	"bytes"
	"fmt"
	"text/template"

	"phalanx-matcher/internal/matching"
	"phalanx-matcher/internal/models"
)

var emailTemplate = template.Must(template.New("top-matches").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(
		`Hi {{.Name}},

We found {{len .Matches}} strong funder match{{if ne (len .Matches) 1}}es{{end}} for {{.Company}}:
{{range $i, $m := .Matches}}
{{inc $i}}. {{$m.Name}}{{if $m.Firm}} ({{$m.Firm}}){{end}} - {{$m.Tier}} match, score {{$m.Score}}{{end}}

Sign in to see the full score breakdown for each funder.
`))

type emailMatch struct {
	Name  string
	Firm  string
	Tier  models.QualityTier
	Score string
}

type emailData struct {
	Name    string
	Company string
	Matches []emailMatch
}

func renderEmail(founder *models.Founder, top []matching.Candidate) (subject, body string, err error) {
	data := emailData{Name: founder.Name, Company: founder.CompanyName}
	if data.Company == "" {
		data.Company = "your company"
	}
	for _, c := range top {
		name := c.Funder.Name
		if name == "" {
			name = c.Funder.ID
		}
		data.Matches = append(data.Matches, emailMatch{
			Name:  name,
			Firm:  c.Funder.FirmName,
			Tier:  c.Breakdown.QualityTier,
			Score: fmt.Sprintf("%.2f", c.Breakdown.TotalScore),
		})
	}

	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render top matches email: %w", err)
	}
	return fmt.Sprintf("%d new funder matches for %s", len(top), data.Company), buf.String(), nil
}
