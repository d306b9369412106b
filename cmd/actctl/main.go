// Command actctl runs the actuator service over the configured actuators and
// offers an interactive console, or runs a one-shot script with -c.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/abiosoft/ishell"

	"actuatorcode-go/bus"
	"actuatorcode-go/services/actuators"
	"actuatorcode-go/services/bridge"
	"actuatorcode-go/services/config"
)

type stdout struct{}

func (stdout) Println(a ...interface{}) { println(joinArgs(a)) }

func main() {
	cfgPath := flag.String("config", "", "YAML config file (default $ACTUATOR_CONFIG or built-in)")
	script := flag.String("c", "", `commands to run, separated by ";"`)
	settle := flag.Duration("settle", 200*time.Millisecond, "wait after start before running -c")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	f, err := config.Load(*cfgPath)
	if err != nil {
		println("[main] config:", err.Error())
		os.Exit(1)
	}

	println("[main] bootstrapping bus …")
	b := bus.NewBus(8)
	config.NewConfigService(f).Start(ctx, b.NewConnection("config"))
	go actuators.Run(ctx, b.NewConnection("actuators"), actuators.Resources{})
	if f.Bridge != nil {
		go bridge.Start(ctx, b.NewConnection("bridge"))
	}

	con := newConsole(b.NewConnection("ui"))
	<-con.watch(ctx)

	if *script != "" {
		time.Sleep(*settle)
		if err := con.script(stdout{}, *script); err != nil {
			println("error:", err.Error())
			os.Exit(1)
		}
		return
	}

	shell := ishell.New()
	shell.Println("actuator console")
	shell.ShowPrompt(true)
	for _, cmd := range commands {
		cmd := cmd
		shell.AddCmd(&ishell.Cmd{
			Name: cmd.name,
			Help: cmd.help,
			Func: func(c *ishell.Context) {
				if err := con.exec(c, append([]string{cmd.name}, c.Args...)); err != nil {
					c.Err(err)
				}
			},
		})
	}
	shell.AddCmd(&ishell.Cmd{
		Name: "quit",
		Help: "stop the actuator service and leave",
		Func: func(c *ishell.Context) { stop() },
	})
	go shell.Start()
	<-ctx.Done()
	println("[main] stopping")
	time.Sleep(50 * time.Millisecond) // let services publish stopped state
}

func joinArgs(a []interface{}) string {
	var buf []byte
	for i, v := range a {
		if i > 0 {
			buf = append(buf, ' ')
		}
		switch x := v.(type) {
		case string:
			buf = append(buf, x...)
		case bool:
			if x {
				buf = append(buf, "true"...)
			} else {
				buf = append(buf, "false"...)
			}
		default:
			buf = append(buf, '?')
		}
	}
	return string(buf)
}
