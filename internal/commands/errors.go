package commands

import "errors"

var errInvalidExternal = errors.New("--external must be true or false")
