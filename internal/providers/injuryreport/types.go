package injuryreport

import "github.com/preston-bernstein/nba-props-engine/internal/domain/availability"

type reportResponse struct {
	Data []availability.RawRecord `json:"data"`
	Meta metaResponse             `json:"meta"`
}

type metaResponse struct {
	ReportTime string `json:"report_time"`
}
