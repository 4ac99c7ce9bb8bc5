// Package shaders embeds the WGSL sources for the light pipeline.
package shaders

import _ "embed"

//go:embed gi_sdf.wgsl
var SDF string

//go:embed gi_ss_probe.wgsl
var Probe string

//go:embed gi_ss_bounce.wgsl
var Bounce string

//go:embed gi_ss_blend.wgsl
var Blend string

//go:embed gi_ss_filter.wgsl
var Filter string

//go:embed post_processing.wgsl
var PostProcessing string

//go:embed text_overlay.wgsl
var TextOverlay string
