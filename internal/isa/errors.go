package isa

import "errors"

var errShortExceptionConfigTable = errors.New("isa: exception configuration table truncated")
