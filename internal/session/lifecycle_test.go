package session

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/simwatch/internal/timeline"
)

var _ = Describe("Controller lifecycle", func() {
	var (
		f      *fixture
		ctx    context.Context
		cancel context.CancelFunc
		done   chan error
	)

	BeforeEach(func() {
		f = newFixture(GinkgoT())
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
		go func() { done <- f.ctrl.Run(ctx) }()
	})

	AfterEach(func() {
		cancel()
		Eventually(done).Should(Receive())
	})

	It("starts idle with the start control enabled", func() {
		s := f.ctrl.State()
		Expect(s.Phase).To(Equal(PhaseIdle))
		Expect(s.StartLabel).To(Equal(LabelStart))
		Expect(s.StartEnabled).To(BeTrue())
	})

	It("moves to running and offers continue after a completed period", func() {
		Expect(f.ctrl.Submit(Action{Kind: ActionStart})).To(BeTrue())
		Eventually(f.ch.sentTypes).Should(Equal([]string{TypeStart}))
		Expect(f.ctrl.State().Phase).To(Equal(PhaseRunning))

		f.ch.push(TypeCompleted, 24.0)
		Eventually(func() string { return f.ctrl.State().StartLabel }).Should(Equal(LabelContinue))
		Expect(f.ctrl.State().MaxObserved).To(Equal(24.0))
	})

	It("keeps the registry consistent when a past snapshot arrives late", func() {
		f.ch.push(TypeUpdatePlot, agents(true, "1", "2"))
		f.ch.push(TypeUpdatePlot, agents(false, "1"))
		f.ch.push(TypeUpdatePlot, agents(true, "1", "2"))
		Eventually(func() int { c, _ := f.render.counts(); return c }).Should(Equal(3))

		_, destroys := f.render.counts()
		Expect(destroys).To(Equal(1))
		Expect(f.entities.Len()).To(Equal(2))
	})

	It("scrubs the view without touching the log", func() {
		f.ch.push(TypeCompleted, 10.0)
		f.ch.push(TypeUpdateLogs, eventsText(
			timeline.Event{Time: 1, Category: "A", Text: "x"},
			timeline.Event{Time: 3, Category: "B", Text: "y"},
		))
		Eventually(f.events.Len).Should(Equal(2))
		Eventually(func() float64 { return f.ctrl.State().MaxObserved }).Should(Equal(10.0))

		Expect(f.ctrl.Submit(Action{Kind: ActionScrub, Time: 2})).To(BeTrue())
		Eventually(f.obs.lastView, time.Second).Should(WithTransform(
			func(v timeline.View) []string { return v.Lines },
			Equal([]string{"1 - x"}),
		))
		Expect(f.events.Len()).To(Equal(2))
		Expect(f.ch.lastSent().Type).To(Equal(TypeRequestTimedata))
	})

	It("reports a disconnect and resumes", func() {
		f.ch.in <- inbound{err: ErrDisconnected}
		Eventually(f.obs.disconnectCount).Should(Equal(1))
		Eventually(func() bool { return f.ctrl.State().Connected }).Should(BeFalse())

		f.ch.push(TypeUpdateTime, 4.0)
		Eventually(func() bool { return f.ctrl.State().Connected }).Should(BeTrue())
		Expect(f.ctrl.State().Cursor).To(Equal(4.0))
	})
})
