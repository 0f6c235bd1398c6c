// Command pulley runs a small scene headless: two crates hanging from a
// pulley above a ground with a stack of boxes, a platform moved by a motor
// joint and a puck slowed down by a friction joint.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/akmonengine/lamina"
	"github.com/akmonengine/lamina/actor"
	"github.com/akmonengine/lamina/constraint"
	"github.com/akmonengine/lamina/joint"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/profile"
)

func main() {
	steps := flag.Int("steps", 600, "number of steps to simulate")
	profiling := flag.String("profile", "", "profiling mode: cpu, mem or empty for none")
	settingsPath := flag.String("settings", "", "YAML file overriding the solver settings")
	workers := flag.Int("workers", 1, "goroutines used by the collision detection")
	useSAT := flag.Bool("sat", false, "use SAT instead of GJK and EPA for polygons and circles")
	debug := flag.Bool("debug", false, "log every step")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	switch *profiling {
	case "cpu":
		defer profile.Start(profile.CPUProfile).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile).Stop()
	}

	if err := run(logger, *steps, *settingsPath, *workers, *useSAT); err != nil {
		logger.Error("simulation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, steps int, settingsPath string, workers int, useSAT bool) error {
	world := lamina.NewWorld()
	world.Logger = logger
	world.Workers = workers
	world.Collision.UseSAT = useSAT

	if settingsPath != "" {
		f, err := os.Open(settingsPath)
		if err != nil {
			return err
		}
		settings, err := constraint.LoadSettings(f)
		f.Close()
		if err != nil {
			return err
		}
		world.Settings = settings
	}

	bounds, err := actor.NewAxisAlignedBounds(100, 100)
	if err != nil {
		return err
	}
	world.Bounds = bounds

	scene, err := buildScene(world)
	if err != nil {
		return err
	}

	var begins, ends, sleeps int
	world.Events.Subscribe(lamina.CONTACT_BEGIN, func(lamina.Event) { begins++ })
	world.Events.Subscribe(lamina.CONTACT_END, func(lamina.Event) { ends++ })
	world.Events.Subscribe(lamina.ON_SLEEP, func(lamina.Event) { sleeps++ })
	world.Events.Subscribe(lamina.OUT_OF_BOUNDS, func(e lamina.Event) {
		logger.Warn("body left the world", slog.Any("position", e.(lamina.OutOfBoundsEvent).Body.Transform.Position))
	})

	stepsPerSecond := int(1 / world.Settings.StepFrequency)
	for i := 1; i <= steps; i++ {
		world.Step(world.Settings.StepFrequency)

		if i%stepsPerSecond == 0 {
			logger.Info("simulation",
				slog.Float64("time", float64(i)*world.Settings.StepFrequency),
				slog.String("heavy", formatVec(scene.heavy.Transform.Position)),
				slog.String("light", formatVec(scene.light.Transform.Position)),
				slog.Float64("rope", scene.pulley.CurrentLength()),
				slog.String("platform", formatVec(scene.platform.Transform.Position)),
				slog.String("puck", formatVec(scene.puck.LinearVelocity)),
				slog.Int("contactBegin", begins),
				slog.Int("contactEnd", ends),
				slog.Int("sleep", sleeps))
		}

		// move the platform back and forth every 2 seconds
		if i%(2*stepsPerSecond) == 0 {
			target := scene.motor.LinearTarget()
			scene.motor.SetLinearTarget(mgl64.Vec2{-target.X(), target.Y()})
		}
	}

	return nil
}

type scene struct {
	heavy, light *actor.RigidBody
	platform     *actor.RigidBody
	puck         *actor.RigidBody
	pulley       *joint.PulleyJoint
	motor        *joint.MotorJoint
}

func buildScene(world *lamina.World) (*scene, error) {
	ground, err := newBox(mgl64.Vec2{0, -0.5}, 40, 1, actor.BodyTypeStatic, 1)
	if err != nil {
		return nil, err
	}
	world.AddBody(ground)

	// a stack of boxes
	for i := 0; i < 5; i++ {
		box, err := newBox(mgl64.Vec2{8, 0.5 + float64(i)*1.01}, 1, 1, actor.BodyTypeDynamic, 1)
		if err != nil {
			return nil, err
		}
		world.AddBody(box)
	}

	// pulley
	heavy, err := newBox(mgl64.Vec2{-4, 4}, 1, 1, actor.BodyTypeDynamic, 2)
	if err != nil {
		return nil, err
	}
	light, err := newBox(mgl64.Vec2{-1, 4}, 1, 1, actor.BodyTypeDynamic, 1)
	if err != nil {
		return nil, err
	}
	world.AddBody(heavy)
	world.AddBody(light)

	pulley, err := joint.NewPulleyJoint(heavy, light,
		mgl64.Vec2{-4, 10}, mgl64.Vec2{-1, 10},
		heavy.WorldCenter(), light.WorldCenter())
	if err != nil {
		return nil, err
	}
	pulley.SetSlackEnabled(true)
	world.AddJoint(pulley)

	// platform driven by a motor relative to the ground
	platform, err := newBox(mgl64.Vec2{2, 6}, 3, 0.25, actor.BodyTypeDynamic, 1)
	if err != nil {
		return nil, err
	}
	world.AddBody(platform)

	motor, err := joint.NewMotorJoint(ground, platform)
	if err != nil {
		return nil, err
	}
	if err := motor.SetMaxForce(500); err != nil {
		return nil, err
	}
	motor.SetLinearTarget(motor.LinearTarget().Add(mgl64.Vec2{3, 0}))
	world.AddJoint(motor)

	// a ball dropped on the platform
	circle, err := actor.NewCircle(0.4)
	if err != nil {
		return nil, err
	}
	ball, err := actor.NewRigidBody(actor.NewTransformAt(mgl64.Vec2{2, 8}, 0), circle, actor.BodyTypeDynamic, actor.Material{Density: 1, Friction: 0.4, Restitution: 0.5})
	if err != nil {
		return nil, err
	}
	world.AddBody(ball)

	// a puck sliding on the ground seen from above: no gravity on it, the
	// friction joint slows it down
	puck, err := newBox(mgl64.Vec2{-10, 3}, 0.5, 0.5, actor.BodyTypeDynamic, 1)
	if err != nil {
		return nil, err
	}
	puck.GravityScale = 0
	puck.LinearVelocity = mgl64.Vec2{4, 0}
	puck.AngularVelocity = 3
	world.AddBody(puck)

	friction, err := joint.NewFrictionJoint(ground, puck, puck.WorldCenter())
	if err != nil {
		return nil, err
	}
	if err := friction.SetMaxForce(0.5); err != nil {
		return nil, err
	}
	world.AddJoint(friction)

	return &scene{
		heavy:    heavy,
		light:    light,
		platform: platform,
		puck:     puck,
		pulley:   pulley,
		motor:    motor,
	}, nil
}

func newBox(position mgl64.Vec2, width, height float64, bodyType actor.BodyType, density float64) (*actor.RigidBody, error) {
	rectangle, err := actor.NewRectangle(width, height)
	if err != nil {
		return nil, err
	}
	material := actor.DefaultMaterial()
	material.Density = density
	return actor.NewRigidBody(actor.NewTransformAt(position, 0), rectangle, bodyType, material)
}

func formatVec(v mgl64.Vec2) string {
	return fmt.Sprintf("(%.3f, %.3f)", v.X(), v.Y())
}
