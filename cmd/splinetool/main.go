// splinetool is a CLI utility for inspecting scenes and exporting the
// geometry generated from their curves.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/spline3d/internal/config"
	"github.com/Faultbox/spline3d/internal/follow"
	"github.com/Faultbox/spline3d/internal/handle"
	"github.com/Faultbox/spline3d/internal/logger"
	"github.com/Faultbox/spline3d/internal/scene"
	"github.com/Faultbox/spline3d/pkg/formats"
	"github.com/Faultbox/spline3d/pkg/spline"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Options()); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		cmdInfo(cfg, args)
	case "sample":
		cmdSample(cfg, args)
	case "road":
		cmdRoad(cfg, args)
	case "intersect":
		cmdIntersect(cfg, args)
	case "follow":
		cmdFollow(cfg, args)
	case "distribute":
		cmdDistribute(cfg, args)
	case "terrain":
		cmdTerrain(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`splinetool - spline scene utility

Usage:
  splinetool [global flags] <command> [options]

Commands:
  info <scene.yaml>                      Show curves and derived records
  sample <scene.yaml> <curve>            Print points along a curve
  road <scene.yaml> <road> [-o out.obj]  Generate a road mesh
  intersect <scene.yaml> [-o out.obj]    Generate intersection meshes
  follow <scene.yaml> [-duration s]      Simulate followers and print events
  distribute <scene.yaml>                Print distributed instance transforms
  terrain [-from img] <out.hfld>         Write a test heightmap or convert an image

Global flags:
  -config <file>   Config file
  -debug           Debug logging
  -segments <n>    Road segments per curve
  -samples <n>     Curve samples per segment

Examples:
  splinetool info cmd/splinetool/testdata/loop.yaml
  splinetool sample -n 20 -uniform cmd/splinetool/testdata/loop.yaml ring
  splinetool road -o avenue.obj cmd/splinetool/testdata/loop.yaml avenue`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func loadScene(cfg *config.Config, path string) *scene.Scene {
	s, err := scene.LoadFile(path, cfg.SceneSettings())
	if err != nil {
		fail("Error: %v", err)
	}
	logger.Debug("scene loaded",
		zap.String("path", path),
		zap.Int("curves", s.Curves.Len()),
		zap.Int("roads", s.Roads.Len()))
	return s
}

func cmdInfo(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fail("Usage: splinetool info <scene.yaml>")
	}
	s := loadScene(cfg, args[0])

	fmt.Printf("Scene: %s\n", args[0])
	fmt.Println()
	fmt.Println("Curves:")
	s.Curves.Each(func(h handle.Handle, n *scene.CurveNode) {
		c := n.Curve
		status := "ok"
		if !c.IsValid() {
			status = fmt.Sprintf("needs %d points", c.Basis.MinPoints())
		}
		length := spline.ApproximateArcLength(c, cfg.Spline.ArcLengthSamples)
		fmt.Printf("  %-12s %-13s points=%-3d closed=%-5v segments=%-3d length=%.3f %s\n",
			n.Name, c.Basis, len(c.Points), c.Closed, c.SegmentCount(), length, status)
	})

	fmt.Printf("\nProps:         %d\n", s.Props.Len())
	fmt.Printf("Distributions: %d\n", s.Distributions.Len())
	fmt.Printf("Followers:     %d\n", s.Followers.Len())
	fmt.Printf("Roads:         %d\n", s.Roads.Len())
	fmt.Printf("Intersections: %d\n", s.Intersections.Len())
	if s.Raycaster != nil {
		fmt.Printf("Terrain:       %T\n", s.Raycaster)
	}
}

func cmdSample(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	count := fs.Int("n", 10, "Number of points")
	uniform := fs.Bool("uniform", false, "Space points by arc length")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fail("Usage: splinetool sample [-n count] [-uniform] <scene.yaml> <curve>")
	}
	s := loadScene(cfg, fs.Arg(0))
	h, ok := s.FindCurve(fs.Arg(1))
	if !ok {
		fail("Curve not found: %s", fs.Arg(1))
	}
	c := s.Curves.Get(h).Curve
	if !c.IsValid() {
		fail("Curve %s has too few points", fs.Arg(1))
	}

	ts := spline.ParametricTValues(*count)
	if *uniform {
		ts = spline.ComputeArcLengthTable(c, cfg.Spline.ArcLengthSamples).UniformTValues(*count)
	}
	world := s.Curves.Get(h).Transform
	for _, t := range ts {
		p, _ := c.Evaluate(t)
		p = world.TransformPoint(p)
		fmt.Printf("%.4f  %10.4f %10.4f %10.4f\n", t, p.X, p.Y, p.Z)
	}
}

func cmdRoad(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("road", flag.ExitOnError)
	output := fs.String("o", "", "Write the mesh to this OBJ file")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fail("Usage: splinetool road [-o out.obj] <scene.yaml> <road>")
	}
	s := loadScene(cfg, fs.Arg(0))
	h, ok := s.FindRoad(fs.Arg(1))
	if !ok {
		fail("Road not found: %s", fs.Arg(1))
	}

	s.Tick(0)
	gm, ok := s.RoadMesh(h)
	if !ok {
		fail("Road %s produced no mesh (invalid curve or template)", fs.Arg(1))
	}
	m := gm.Mesh.Transformed(gm.World)

	fmt.Printf("Road:      %s\n", fs.Arg(1))
	fmt.Printf("Vertices:  %d\n", m.VertexCount())
	fmt.Printf("Triangles: %d\n", m.TriangleCount())
	fmt.Printf("Bounds:    %v - %v\n", m.Bounds.Min, m.Bounds.Max)
	if gm.NeedsProjection {
		fmt.Println("Projection: pending (terrain not ready)")
	}

	if *output != "" {
		if err := formats.WriteOBJFile(*output, m, fs.Arg(1)); err != nil {
			fail("Error writing %s: %v", *output, err)
		}
		fmt.Printf("Wrote %s\n", *output)
	}
}

func cmdIntersect(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("intersect", flag.ExitOnError)
	output := fs.String("o", "", "Write the first intersection mesh to this OBJ file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: splinetool intersect [-o out.obj] <scene.yaml>")
	}
	s := loadScene(cfg, fs.Arg(0))
	s.Tick(0)

	written := false
	for _, h := range s.Intersections.Handles() {
		gm, ok := s.IntersectionMesh(h)
		if !ok {
			fmt.Printf("%s: fewer than two resolvable road ends\n", h)
			continue
		}
		fmt.Printf("%s: center=%v vertices=%d triangles=%d\n",
			h, gm.Center, gm.Mesh.VertexCount(), gm.Mesh.TriangleCount())

		if *output != "" && !written {
			if err := formats.WriteOBJFile(*output, gm.Mesh, h.String()); err != nil {
				fail("Error writing %s: %v", *output, err)
			}
			fmt.Printf("Wrote %s\n", *output)
			written = true
		}
	}
}

func cmdFollow(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("follow", flag.ExitOnError)
	duration := fs.Float64("duration", float64(cfg.Follow.Duration), "Seconds to simulate")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: splinetool follow [-duration s] <scene.yaml>")
	}
	s := loadScene(cfg, fs.Arg(0))

	dt := 1 / float32(cfg.Follow.TickRate)
	ticks := int(math32.Ceil(float32(*duration) / dt))
	for i := range ticks {
		for _, ev := range s.Tick(dt) {
			fmt.Printf("%8.3fs  %s  %s\n", float32(i+1)*dt, ev.Follower, ev.Kind)
		}
	}

	fmt.Println()
	s.Followers.Each(func(h handle.Handle, f *follow.Follower) {
		p := f.Transform.Translation
		fmt.Printf("%s: t=%.4f state=%s position=(%.3f, %.3f, %.3f)\n", h, f.T, f.State, p.X, p.Y, p.Z)
	})
}

func cmdDistribute(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fail("Usage: splinetool distribute <scene.yaml>")
	}
	s := loadScene(cfg, args[0])
	s.Tick(0)

	for _, d := range s.Distributions.Handles() {
		fmt.Printf("%s:\n", d)
		for _, ih := range s.InstancesOf(d) {
			inst := s.Instances().Get(ih)
			p := inst.Transform.Translation
			fwd := inst.Transform.Rotation.Forward()
			pending := ""
			if inst.NeedsProjection {
				pending = " (projection pending)"
			}
			fmt.Printf("  #%-3d pos=(%8.3f, %8.3f, %8.3f) fwd=(%6.3f, %6.3f, %6.3f)%s\n",
				inst.Index, p.X, p.Y, p.Z, fwd.X, fwd.Y, fwd.Z, pending)
		}
	}
}

func cmdTerrain(args []string) {
	fs := flag.NewFlagSet("terrain", flag.ExitOnError)
	width := fs.Int("width", 64, "Grid columns")
	depth := fs.Int("depth", 64, "Grid rows")
	cell := fs.Float64("cell", 1, "Cell size in world units")
	amplitude := fs.Float64("amplitude", 2, "Hill height, or the height of white with -from")
	from := fs.String("from", "", "Convert a grayscale BMP or PNG instead of generating hills")
	fs.Parse(args)

	if fs.NArg() < 1 || *width < 2 || *depth < 2 {
		fail("Usage: splinetool terrain [-width n] [-depth n] [-cell size] [-amplitude h] [-from image] <out.hfld>")
	}

	var hm *formats.Heightmap
	if *from != "" {
		var err error
		hm, err = formats.ParseHeightmapImageFile(*from, float32(*cell), float32(*amplitude))
		if err != nil {
			fail("Error: %v", err)
		}
	} else {
		hm = formats.NewHeightmap(uint32(*width), uint32(*depth), float32(*cell))
		amp := float32(*amplitude)
		for z := range *depth {
			for x := range *width {
				h := math32.Sin(float32(x)*0.2) * math32.Cos(float32(z)*0.15) * amp
				hm.Set(x, z, h)
			}
		}
	}
	hm.Origin = [3]float32{-float32(hm.Width-1) * hm.CellSize / 2, 0, -float32(hm.Depth-1) * hm.CellSize / 2}

	f, err := os.Create(fs.Arg(0))
	if err != nil {
		fail("Error: %v", err)
	}
	defer f.Close()
	if err := formats.WriteHeightmap(f, hm); err != nil {
		fail("Error writing heightmap: %v", err)
	}

	lo, hi := hm.GetAltitudeRange()
	fmt.Printf("Wrote %s (%dx%d, heights %.2f..%.2f)\n", fs.Arg(0), hm.Width, hm.Depth, lo, hi)
}
