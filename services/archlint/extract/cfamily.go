// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extract

import (
	"regexp"
	"strings"

	"github.com/AleutianAI/archgraph/services/archlint/graph"
)

// cSystemHeaders is the C/C++ system header deny-list: libc, POSIX and
// the C++ standard library (whose headers have no extension).
var cSystemHeaders = map[string]struct{}{
	// C standard library
	"assert.h": {}, "complex.h": {}, "ctype.h": {}, "errno.h": {},
	"fenv.h": {}, "float.h": {}, "inttypes.h": {}, "iso646.h": {},
	"limits.h": {}, "locale.h": {}, "math.h": {}, "setjmp.h": {},
	"signal.h": {}, "stdalign.h": {}, "stdarg.h": {}, "stdatomic.h": {},
	"stdbool.h": {}, "stddef.h": {}, "stdint.h": {}, "stdio.h": {},
	"stdlib.h": {}, "string.h": {}, "tgmath.h": {}, "threads.h": {},
	"time.h": {}, "uchar.h": {}, "wchar.h": {}, "wctype.h": {},
	// POSIX
	"unistd.h": {}, "fcntl.h": {}, "pthread.h": {}, "semaphore.h": {},
	"dirent.h": {}, "dlfcn.h": {}, "netdb.h": {}, "poll.h": {},
	"regex.h": {}, "sched.h": {}, "termios.h": {}, "syslog.h": {},
	"arpa/inet.h": {}, "netinet/in.h": {}, "netinet/tcp.h": {},
	"sys/types.h": {}, "sys/stat.h": {}, "sys/socket.h": {},
	"sys/time.h": {}, "sys/wait.h": {}, "sys/mman.h": {},
	"sys/ioctl.h": {}, "sys/epoll.h": {}, "sys/uio.h": {},
	// C++ standard library
	"algorithm": {}, "any": {}, "array": {}, "atomic": {}, "bitset": {},
	"chrono": {}, "compare": {}, "concepts": {}, "condition_variable": {},
	"coroutine": {}, "deque": {}, "exception": {}, "execution": {},
	"filesystem": {}, "format": {}, "forward_list": {}, "fstream": {},
	"functional": {}, "future": {}, "initializer_list": {}, "iomanip": {},
	"ios": {}, "iosfwd": {}, "iostream": {}, "istream": {}, "iterator": {},
	"limits": {}, "list": {}, "locale": {}, "map": {}, "memory": {},
	"memory_resource": {}, "mutex": {}, "new": {}, "numbers": {},
	"numeric": {}, "optional": {}, "ostream": {}, "queue": {},
	"random": {}, "ranges": {}, "ratio": {}, "regex": {}, "set": {},
	"shared_mutex": {}, "span": {}, "sstream": {}, "stack": {},
	"stdexcept": {}, "streambuf": {}, "string": {}, "string_view": {},
	"system_error": {}, "thread": {}, "tuple": {}, "type_traits": {},
	"typeindex": {}, "typeinfo": {}, "unordered_map": {},
	"unordered_set": {}, "utility": {}, "valarray": {}, "variant": {},
	"vector": {}, "version": {},
	// C headers under their C++ names
	"cassert": {}, "cctype": {}, "cerrno": {}, "cfloat": {}, "cinttypes": {},
	"climits": {}, "clocale": {}, "cmath": {}, "csetjmp": {}, "csignal": {},
	"cstdarg": {}, "cstddef": {}, "cstdint": {}, "cstdio": {}, "cstdlib": {},
	"cstring": {}, "ctime": {}, "cuchar": {}, "cwchar": {}, "cwctype": {},
}

var cIncludeRe = regexp.MustCompile(`^\s*#\s*include\s+(?:<([^>]+)>|"([^"]+)")`)

// CFamilyExtractor extracts #include directives for C and C++.
//
// Quoted includes are intra-project by convention. Angle includes go
// through the system header deny-list: third-party and project headers
// are often included with angle brackets too, so unknown angle paths
// are kept and left to the resolver (which drops whatever fails to map
// to a node).
type CFamilyExtractor struct{}

func (c *CFamilyExtractor) Language() string { return "c" }

func (c *CFamilyExtractor) Extract(filePath string, content []byte) ([]graph.ImportRecord, error) {
	if err := checkContent(content); err != nil {
		return nil, err
	}

	var records []graph.ImportRecord
	err := eachLine(content, func(line string, n int) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			return
		}
		m := cIncludeRe.FindStringSubmatch(line)
		if m == nil {
			return
		}
		if angle := m[1]; angle != "" {
			if _, denied := cSystemHeaders[angle]; denied {
				return
			}
			records = append(records, record(filePath, n, angle))
			return
		}
		records = append(records, record(filePath, n, m[2]))
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
