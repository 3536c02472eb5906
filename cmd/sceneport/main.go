// sceneport - glTF 2.0 scene inspector
// Imports a .gltf or .glb asset and prints the materialized scene:
// node hierarchy, meshes, materials, cameras, and animations.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/taigrr/sceneport/pkg/gltfimport"
	"github.com/taigrr/sceneport/pkg/logger"
	"github.com/taigrr/sceneport/pkg/scene"
)

var (
	logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFile   = flag.String("log-file", "", "Optional rotated log file")
	showTree  = flag.Bool("tree", true, "Print the node hierarchy")
	showAnims = flag.Bool("animations", true, "Print animation channels")
	showMats  = flag.Bool("materials", true, "Print the material table")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "sceneport - glTF 2.0 scene inspector\n\n")
		fmt.Fprintf(os.Stderr, "Usage: sceneport [options] <asset.gltf|asset.glb>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	log, err := logger.New(*logLevel, *logFile)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	imp := gltfimport.New()
	imp.Log = log

	sc, err := imp.Open(path)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	printSummary(sc)
	if *showTree && sc.Root != nil {
		fmt.Println("\nNodes:")
		printNode(sc.Root, 1)
	}
	if *showMats {
		printMaterials(sc)
	}
	if *showAnims && len(sc.Animations) > 0 {
		printAnimations(sc)
	}
	return nil
}

func printSummary(sc *scene.Scene) {
	fmt.Printf("meshes=%d materials=%d textures=%d cameras=%d animations=%d\n",
		len(sc.Meshes), len(sc.Materials), len(sc.Textures), len(sc.Cameras), len(sc.Animations))
	if sc.Flags&scene.FlagIncomplete != 0 {
		fmt.Println("scene is incomplete: no meshes were produced")
	}

	var verts, faces int
	for _, m := range sc.Meshes {
		verts += m.VertexCount()
		faces += m.FaceCount()
	}
	fmt.Printf("vertices=%d faces=%d\n", verts, faces)
}

func printNode(n *scene.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Printf("%s%s", indent, n.Name)
	if len(n.Meshes) > 0 {
		fmt.Printf(" meshes=%v", n.Meshes)
	}
	fmt.Println()
	for _, c := range n.Children {
		printNode(c, depth+1)
	}
}

func printMaterials(sc *scene.Scene) {
	fmt.Println("\nMaterials:")
	for i, m := range sc.Materials {
		name := m.Name
		if name == "" {
			if i == len(sc.Materials)-1 {
				name = "(default)"
			} else {
				name = "(unnamed)"
			}
		}
		fmt.Printf("  %2d %-24s base=%.3v metallic=%.2f roughness=%.2f",
			i, name, m.BaseColorFactor, m.MetallicFactor, m.RoughnessFactor)
		if m.DiffuseTexture != nil {
			fmt.Printf(" tex=%s", m.DiffuseTexture.URI)
		}
		if m.Unlit {
			fmt.Print(" unlit")
		}
		fmt.Println()
	}
}

func printAnimations(sc *scene.Scene) {
	fmt.Println("\nAnimations:")
	for i, a := range sc.Animations {
		name := a.Name
		if name == "" {
			name = fmt.Sprintf("animation-%d", i)
		}
		fmt.Printf("  %s duration=%.0fms channels=%d\n", name, a.Duration, len(a.Channels))
		for _, ch := range a.Channels {
			fmt.Printf("    %s T=%d R=%d S=%d\n",
				ch.NodeName, len(ch.PositionKeys), len(ch.RotationKeys), len(ch.ScaleKeys))
		}
	}
}
