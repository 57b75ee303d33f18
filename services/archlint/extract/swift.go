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

// appleFrameworks is the system framework deny-list shared by the Swift
// and Objective-C extractors: the SDK frameworks a module import can
// name without being intra-project.
var appleFrameworks = map[string]struct{}{
	"Foundation": {}, "UIKit": {}, "AppKit": {}, "SwiftUI": {}, "Combine": {},
	"CoreData": {}, "CoreGraphics": {}, "CoreImage": {}, "CoreLocation": {},
	"CoreText": {}, "CoreML": {}, "CoreMedia": {}, "CoreVideo": {},
	"CoreAudio": {}, "CoreBluetooth": {}, "CoreMotion": {}, "CoreTelephony": {},
	"CoreFoundation": {}, "CoreServices": {}, "CoreAnimation": {},
	"QuartzCore": {}, "Metal": {}, "MetalKit": {}, "SceneKit": {},
	"SpriteKit": {}, "ARKit": {}, "RealityKit": {}, "AVFoundation": {},
	"AVKit": {}, "Photos": {}, "PhotosUI": {}, "MapKit": {}, "WebKit": {},
	"SafariServices": {}, "StoreKit": {}, "CloudKit": {}, "HealthKit": {},
	"HomeKit": {}, "WatchKit": {}, "WidgetKit": {}, "XCTest": {},
	"Security": {}, "LocalAuthentication": {}, "UserNotifications": {},
	"Network": {}, "SystemConfiguration": {}, "Accelerate": {},
	"GameplayKit": {}, "OSLog": {}, "Dispatch": {}, "ObjectiveC": {},
	"Swift": {}, "Darwin": {}, "Glibc": {},
}

var swiftImportRe = regexp.MustCompile(`^\s*(?:@testable\s+)?import\s+(?:(?:class|struct|enum|protocol|typealias|func|var|let)\s+)?([A-Za-z_][\w.]*)`)

// SwiftExtractor extracts module imports, including @testable and
// scoped declaration imports ("import class Foo.Bar").
type SwiftExtractor struct{}

func (s *SwiftExtractor) Language() string { return "swift" }

func (s *SwiftExtractor) Extract(filePath string, content []byte) ([]graph.ImportRecord, error) {
	if err := checkContent(content); err != nil {
		return nil, err
	}

	var records []graph.ImportRecord
	err := eachLine(content, func(line string, n int) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			return
		}
		m := swiftImportRe.FindStringSubmatch(line)
		if m == nil {
			return
		}
		module := m[1]
		if _, denied := appleFrameworks[firstSegment(module, '.')]; denied {
			return
		}
		records = append(records, record(filePath, n, module))
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
