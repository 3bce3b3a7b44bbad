package api

import columnservice "github.com/weibeld/github-projects-dashboard/internal/services/column"

func columnRequest(title string) columnservice.CreateColumnRequest {
	return columnservice.CreateColumnRequest{Title: title}
}
