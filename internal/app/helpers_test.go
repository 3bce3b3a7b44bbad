package app

import (
	columnservice "github.com/weibeld/github-projects-dashboard/internal/services/column"
	labelservice "github.com/weibeld/github-projects-dashboard/internal/services/label"
)

func columnRequest(title string) columnservice.CreateColumnRequest {
	return columnservice.CreateColumnRequest{Title: title}
}

func labelRequest(title string) labelservice.CreateLabelRequest {
	return labelservice.CreateLabelRequest{Title: title, Color: "#d73a4a"}
}
