package session_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/hanoisim/internal/geometry"
	"github.com/san-kum/hanoisim/internal/hanoi"
	"github.com/san-kum/hanoisim/internal/session"
)

var _ = Describe("Session", func() {
	var (
		layout geometry.Layout
		s      *session.Session
	)

	BeforeEach(func() {
		layout = geometry.DefaultLayout()
		s = session.New(3, layout)
	})

	Describe("New", func() {
		It("stacks every disk on the source peg, largest at the bottom", func() {
			Expect(s.Counts()).To(Equal([3]int{3, 0, 0}))
			Expect(s.Stack(hanoi.Source)).To(Equal([]int{3, 2, 1}))
			Expect(s.Steps()).To(BeZero())
			Expect(s.Remaining()).To(Equal(7))
		})

		It("rests each disk in its slot", func() {
			for rank := 1; rank <= 3; rank++ {
				pos, err := s.Position(rank)
				Expect(err).NotTo(HaveOccurred())
				Expect(pos).To(Equal(layout.Slot(hanoi.Source, 3-rank)))
			}
		})

		It("rejects unknown disks", func() {
			_, err := s.Position(4)
			Expect(err).To(MatchError(session.ErrUnknownDisk))
		})
	})

	Describe("Apply", func() {
		It("moves the top disk and logs the step", func() {
			step, err := s.Apply(hanoi.Move{Disk: 1, From: hanoi.Source, To: hanoi.Target})
			Expect(err).NotTo(HaveOccurred())
			Expect(step.Index).To(Equal(1))
			Expect(step.Text).To(Equal("1: Move 1 from SOURCE to TARGET"))
			Expect(s.Counts()).To(Equal([3]int{2, 0, 1}))

			pos, _ := s.Position(1)
			Expect(pos).To(Equal(step.Trajectory.Lowered))
			Expect(pos).To(Equal(layout.Slot(hanoi.Target, 0)))
		})

		It("computes clearance from the counts before the move", func() {
			step, err := s.Apply(hanoi.Move{Disk: 1, From: hanoi.Source, To: hanoi.Auxiliary})
			Expect(err).NotTo(HaveOccurred())
			traj := step.Trajectory
			Expect(traj.Lifted.Y - traj.Initial.Y).To(Equal(float64(310 - 20*3)))
			Expect(traj.Translated.Y - traj.Lowered.Y).To(Equal(float64(290 - 20*0)))
			Expect(traj.Lowered.X - traj.Initial.X).To(Equal(layout.PegSpacing))
		})

		It("refuses to lift a buried disk", func() {
			_, err := s.Apply(hanoi.Move{Disk: 3, From: hanoi.Source, To: hanoi.Target})
			Expect(err).To(MatchError(session.ErrIllegalMove))
			Expect(s.Steps()).To(BeZero())
		})

		It("refuses to bury a smaller disk", func() {
			_, err := s.Apply(hanoi.Move{Disk: 1, From: hanoi.Source, To: hanoi.Target})
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Apply(hanoi.Move{Disk: 2, From: hanoi.Source, To: hanoi.Target})
			Expect(err).To(MatchError(session.ErrIllegalMove))
		})

		It("refuses a move onto the same peg", func() {
			_, err := s.Apply(hanoi.Move{Disk: 1, From: hanoi.Source, To: hanoi.Source})
			Expect(err).To(MatchError(session.ErrIllegalMove))
		})
	})

	Describe("full solve", func() {
		for n := hanoi.MinDisks; n <= hanoi.MaxDisks; n++ {
			n := n
			It("ends with every disk on the target peg", func() {
				s := session.New(n, layout)
				for m := range hanoi.Solve(n, hanoi.Source, hanoi.Auxiliary, hanoi.Target) {
					before := s.Counts()
					step, err := s.Apply(m)
					Expect(err).NotTo(HaveOccurred())

					counts := s.Counts()
					Expect(counts[0] + counts[1] + counts[2]).To(Equal(n))

					tallest := max(before[m.From], before[m.To])
					Expect(step.Trajectory.Lifted.Y).To(BeNumerically(">=", layout.StackTop(tallest)))

					for _, p := range hanoi.Pegs {
						stack := s.Stack(p)
						for i := 1; i < len(stack); i++ {
							Expect(stack[i]).To(BeNumerically("<", stack[i-1]))
						}
					}
				}
				Expect(s.Counts()).To(Equal([3]int{0, 0, n}))
				Expect(s.Solved()).To(BeTrue())
				Expect(s.Steps()).To(Equal(hanoi.TotalMoves(n)))
				Expect(s.Remaining()).To(BeZero())
			})
		}
	})

	Describe("Reset", func() {
		It("matches a fresh session at any point", func() {
			fresh := session.New(3, layout).Snapshot()
			moves := hanoi.Moves(3)
			for k := 0; k <= len(moves); k++ {
				s := session.New(3, layout)
				for _, m := range moves[:k] {
					_, err := s.Apply(m)
					Expect(err).NotTo(HaveOccurred())
				}
				Expect(s.Reset().Snapshot()).To(Equal(fresh))
				Expect(s.Reset().Reset().Snapshot()).To(Equal(fresh))
			}
		})

		It("leaves the old session untouched", func() {
			_, err := s.Apply(hanoi.Move{Disk: 1, From: hanoi.Source, To: hanoi.Target})
			Expect(err).NotTo(HaveOccurred())
			_ = s.Reset()
			Expect(s.Steps()).To(Equal(1))
		})
	})

	Describe("Snapshot", func() {
		It("orders disks by rank with their pegs and depths", func() {
			_, err := s.Apply(hanoi.Move{Disk: 1, From: hanoi.Source, To: hanoi.Target})
			Expect(err).NotTo(HaveOccurred())

			snap := s.Snapshot()
			Expect(snap.Steps).To(Equal(1))
			Expect(snap.State).To(HaveLen(3))
			Expect(snap.State[0].Peg).To(Equal(hanoi.Target))
			Expect(snap.State[0].Depth).To(BeZero())
			Expect(snap.State[2].Peg).To(Equal(hanoi.Source))
			Expect(snap.State[2].Width).To(Equal(layout.DiskWidth(3)))
		})
	})
})
