/*
 * Copyright (C) 2025 DXTR Asia Pte. Ltd.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package logs

import (
	"log"
	"os"
)

var Logs *log.Logger

func Init(name string) {
	// init stderr writer
	logger := log.New(os.Stderr, name+" ", log.Ldate|log.Ltime|log.Lshortfile)

	// assign writer to Logs var
	Logs = logger
}

func Log(message string) {
	Logs.Println(message)
}
