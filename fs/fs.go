package appfs

import "embed"

// FS holds the goose migrations and the email templates shipped with the binary.
//go:embed migrations/*.sql templates/email/*
var FS embed.FS
