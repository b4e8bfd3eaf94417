package hal

// IRQ is an interrupt vector number.
type IRQ uint8

// Interrupt vectors of the target, in table order.
const (
	IRQWWDG IRQ = iota
	IRQPVD
	IRQFlash
	IRQRCC
	IRQEXTI7_0
	IRQAWU
	IRQDMA1Ch1
	IRQDMA1Ch2
	IRQDMA1Ch3
	IRQDMA1Ch4
	IRQDMA1Ch5
	IRQDMA1Ch6
	IRQDMA1Ch7
	IRQADC
	IRQI2C1EV
	IRQI2C1ER
	IRQUSART1
	IRQSPI1
	IRQTIM1BRK
	IRQTIM1UP
	IRQTIM1TRGCOM
	IRQTIM1CC
	IRQTIM2

	NumIRQ
)

var irqNames = [NumIRQ]string{
	"WWDG", "PVD", "FLASH", "RCC", "EXTI7_0", "AWU",
	"DMA1_CH1", "DMA1_CH2", "DMA1_CH3", "DMA1_CH4", "DMA1_CH5", "DMA1_CH6", "DMA1_CH7",
	"ADC", "I2C1_EV", "I2C1_ER", "USART1", "SPI1",
	"TIM1_BRK", "TIM1_UP", "TIM1_TRG_COM", "TIM1_CC", "TIM2",
}

// String returns the vector name.
func (i IRQ) String() string {
	if i < NumIRQ {
		return irqNames[i]
	}
	return "IRQ?"
}

// Handler services one interrupt.
type Handler func()

// VectorTable maps interrupt numbers to handlers. Unbound entries are
// ignored when dispatched.
type VectorTable struct {
	handlers [NumIRQ]Handler
}

// Bind installs h for irq. Passing nil unbinds it.
func (v *VectorTable) Bind(irq IRQ, h Handler) {
	if irq < NumIRQ {
		v.handlers[irq] = h
	}
}

// Bound reports whether irq has a handler.
func (v *VectorTable) Bound(irq IRQ) bool {
	return irq < NumIRQ && v.handlers[irq] != nil
}

// Dispatch runs the handler for irq and reports whether one was bound.
func (v *VectorTable) Dispatch(irq IRQ) bool {
	if irq >= NumIRQ || v.handlers[irq] == nil {
		return false
	}
	v.handlers[irq]()
	return true
}
