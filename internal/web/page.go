package web

import "embed"

//go:embed templates/chat.html
var templates embed.FS
