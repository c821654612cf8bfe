// Package kangaroo solves bounded discrete-logarithm problems on secp256k1
// using Pollard's Kangaroo (lambda) method: given a target public key P and a
// range [a,b] known to contain the scalar k with P = k*G, it finds k in
// roughly 1.25*sqrt(b-a) curve operations.
//
// Two herds of walkers take pseudorandom jumps determined entirely by their
// current point: tame walkers start from known scalars inside the range, the
// wild herd starts from the target itself. Points whose x-coordinate ends in
// a configured number of zero bits are recorded in a shared table; the first
// time a tame and a wild walk record the same point, the difference of their
// accumulated distances is the key.
//
// # Quick Start
//
//	solver := kangaroo.NewSolver()
//
//	err := solver.Init(kangaroo.Config{
//	    TargetHex:         "03a598a8030da6d86c6bc7f2f5144ea549d28211ea58faa70ebf4c1e665c1fe9b5",
//	    RangeStartHex:     "1",
//	    RangeEndHex:       "ffffffff",
//	    Threads:           8,
//	    DistinguishedBits: 12,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := solver.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer solver.Stop()
//
//	for !solver.IsSolved() {
//	    time.Sleep(time.Second)
//	    st := solver.Stats()
//	    fmt.Printf("%d jumps, %d distinguished points\n", st.TotalJumps, st.DistinguishedPoints)
//	}
//	fmt.Println("key:", solver.Stats().FoundKey)
//
// # Checkpointing
//
// A run can be snapshotted at any time, including while running, and resumed
// later:
//
//	solver.SaveCheckpoint("run.checkpoint")
//
//	// later, possibly in a new process
//	solver := kangaroo.NewSolver()
//	solver.Init(sameConfig)
//	if err := solver.LoadCheckpoint("run.checkpoint"); err != nil {
//	    log.Fatal(err)
//	}
//	solver.Start()
//
// The jump function is a pure function of the walker's position, so a
// reloaded run replays the identical trajectories.
package kangaroo
