package classifier

// ReasonRule maps a keyword found in an absence notice to a reason label
type ReasonRule struct {
	Keyword string `yaml:"keyword" json:"keyword" validate:"required"`
	Reason  string `yaml:"reason" json:"reason" validate:"required"`
}

// Rules are the keyword tables driving classification. Reasons are checked in order.
type Rules struct {
	AbsenceKeywords   []string     `yaml:"absenceKeywords" validate:"required,min=1,dive,required"`
	Reasons           []ReasonRule `yaml:"reasons" validate:"dive"`
	DefaultReason     string       `yaml:"defaultReason" validate:"required"`
	SubstituteMarkers []string     `yaml:"substituteMarkers" validate:"required,min=1,dive,required"`
	AcceptMarkers     []string     `yaml:"acceptMarkers" validate:"required,min=1,dive,required"`
	DeclineMarkers    []string     `yaml:"declineMarkers" validate:"required,min=1,dive,required"`
	TomorrowWords     []string     `yaml:"tomorrowWords"`
	DefaultTimeRange  string       `yaml:"defaultTimeRange" validate:"required"`
}

// DefaultRules returns the built-in Japanese keyword tables
func DefaultRules() Rules {
	return Rules{
		AbsenceKeywords: []string{"欠勤", "休み", "体調不良", "風邪", "熱"},
		Reasons: []ReasonRule{
			{Keyword: "風邪", Reason: "風邪"},
			{Keyword: "熱", Reason: "発熱"},
			{Keyword: "家族", Reason: "家族の事情"},
		},
		DefaultReason:     "体調不良",
		SubstituteMarkers: []string{"代わり", "代理"},
		AcceptMarkers:     []string{"出勤します", "行きます", "行けます", "出られます", "できます", "大丈夫"},
		DeclineMarkers:    []string{"無理", "できない", "できません", "行けません", "出られません", "難しい"},
		TomorrowWords:     []string{"明日"},
		DefaultTimeRange:  "10:00-18:00",
	}
}

// normalized returns a copy with every keyword folded the same way as message text
func (r Rules) normalized() Rules {
	out := Rules{
		AbsenceKeywords:   normalizeAll(r.AbsenceKeywords),
		DefaultReason:     r.DefaultReason,
		SubstituteMarkers: normalizeAll(r.SubstituteMarkers),
		AcceptMarkers:     normalizeAll(r.AcceptMarkers),
		DeclineMarkers:    normalizeAll(r.DeclineMarkers),
		TomorrowWords:     normalizeAll(r.TomorrowWords),
		DefaultTimeRange:  r.DefaultTimeRange,
	}
	for _, rule := range r.Reasons {
		out.Reasons = append(out.Reasons, ReasonRule{Keyword: normalize(rule.Keyword), Reason: rule.Reason})
	}
	return out
}

func normalizeAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		out = append(out, normalize(keyword))
	}
	return out
}
