//go:build rp2040 || rp2350

// Pico-chirp runs the Chirp sensor service on a Raspberry Pi Pico with the
// sensors on I2C0 and logs on UART0.
package main

import (
	"context"
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"chirpcode-go/bus"
	chirpsvc "chirpcode-go/services/chirp"
	"chirpcode-go/services/config"
	"chirpcode-go/services/labelstore"
	"chirpcode-go/types"
	"chirpcode-go/x/logx"
)

func main() {
	time.Sleep(2 * time.Second)

	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	log := &logx.Console{Tag: "chirp", Min: logx.LevelInfo, Out: u}
	log.Infof("boot")

	i2c := machine.I2C0
	if err := i2c.Configure(machine.I2CConfig{
		Frequency: 100 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	}); err != nil {
		log.Errorf("i2c0 configure: %v", err)
	}

	b := bus.NewBus(4)
	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, "pico")

	mon := b.NewConnection("ui").Subscribe(chirpsvc.TopicState)
	go func() {
		for m := range mon.Channel() {
			if st, ok := m.Payload.(types.State); ok {
				log.Infof("state %s %s devices=%d", st.Level, st.Status, st.Devices)
			}
		}
	}()

	var labels chirpsvc.LabelStore
	if fl, err := labelstore.OpenFlash(machine.Flash); err != nil {
		log.Errorf("flash label store: %v; labels last until reset", err)
		labels = labelstore.NewMemory()
	} else {
		labels = fl
	}

	svc := chirpsvc.NewService(b.NewConnection("chirp"), chirpsvc.Deps{
		Bus:    i2c,
		Labels: labels,
		Log:    log,
	}, chirpsvc.DefaultTick)

	config.NewConfigService(log).Start(ctx, b.NewConnection("config"))
	svc.Run(ctx)
}
