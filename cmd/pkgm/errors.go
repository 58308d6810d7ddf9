package main

import "errors"

var errAlreadyInitialized = errors.New("pkgm is already initialized")
