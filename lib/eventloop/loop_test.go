// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventloop

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/buslog/lib/testutil"
)

func TestRunUntilIdleRunsInOrder(t *testing.T) {
	loop := New()
	var order []int
	for i := 0; i < 3; i++ {
		loop.Post(func() { order = append(order, i) })
	}
	if executed := loop.RunUntilIdle(); executed != 3 {
		t.Errorf("executed %d callbacks, want 3", executed)
	}
	if !slices.Equal(order, []int{0, 1, 2}) {
		t.Errorf("order = %v, want [0 1 2]", order)
	}
}

func TestRunUntilIdleIncludesNestedPosts(t *testing.T) {
	loop := New()
	var order []string
	loop.Post(func() {
		order = append(order, "outer")
		loop.Post(func() { order = append(order, "inner") })
	})
	loop.RunUntilIdle()
	if !slices.Equal(order, []string{"outer", "inner"}) {
		t.Errorf("order = %v", order)
	}
	if loop.Pending() != 0 {
		t.Errorf("Pending() = %d after idle", loop.Pending())
	}
}

func TestRunProcessesPostsFromOtherGoroutines(t *testing.T) {
	loop := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopped := make(chan error, 1)
	go func() { stopped <- loop.Run(ctx) }()

	// Callbacks run serially on the loop goroutine, so the counter
	// needs no lock even though the posters are concurrent.
	count := 0
	done := make(chan struct{})
	var posters sync.WaitGroup
	for i := 0; i < 50; i++ {
		posters.Add(1)
		go func() {
			defer posters.Done()
			loop.Post(func() {
				count++
				if count == 50 {
					close(done)
				}
			})
		}()
	}
	posters.Wait()

	testutil.RequireClosed(t, done, 5*time.Second, "waiting for 50 callbacks")
	cancel()
	if err := testutil.RequireReceive(t, stopped, 5*time.Second, "waiting for Run to return"); err != nil {
		t.Errorf("Run returned %v, want nil", err)
	}
}

func TestFutureThenRunsOnLoop(t *testing.T) {
	loop := New()
	future := NewFuture[int](loop)

	var got []Result[int]
	future.Then(func(result Result[int]) { got = append(got, result) })

	if loop.RunUntilIdle() != 0 {
		t.Fatal("callback ran before completion")
	}

	if !future.Complete(7, nil) {
		t.Fatal("first Complete should report true")
	}
	if future.Complete(8, errors.New("late")) {
		t.Error("second Complete should report false")
	}
	if len(got) != 0 {
		t.Fatal("callback ran on the completing goroutine")
	}

	loop.RunUntilIdle()
	if len(got) != 1 || got[0].Value != 7 || !got[0].OK() {
		t.Errorf("results = %+v, want one OK result with value 7", got)
	}

	// Then after completion still delivers, via the loop.
	future.Then(func(result Result[int]) { got = append(got, result) })
	loop.RunUntilIdle()
	if len(got) != 2 || got[1].Value != 7 {
		t.Errorf("late Then results = %+v", got)
	}
}

func TestCompletedCarriesError(t *testing.T) {
	loop := New()
	failure := errors.New("no such method")
	var result Result[string]
	Completed(loop, "", failure).Then(func(r Result[string]) { result = r })
	loop.RunUntilIdle()
	if !errors.Is(result.Err, failure) || result.OK() {
		t.Errorf("result = %+v, want error %v", result, failure)
	}
}

func TestGoCompletesFromGoroutine(t *testing.T) {
	loop := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	release := make(chan string)
	results := make(chan Result[string], 1)
	Go(loop, func() (string, error) { return <-release, nil }).Then(func(result Result[string]) {
		results <- result
	})

	select {
	case result := <-results:
		t.Fatalf("Go completed before its operation returned: %+v", result)
	default:
	}
	testutil.RequireSend(t, release, ":1.5", 5*time.Second, "releasing the blocked operation")

	result := testutil.RequireReceive(t, results, 5*time.Second, "waiting for Go completion")
	if result.Value != ":1.5" || result.Err != nil {
		t.Errorf("result = %+v", result)
	}
}

func TestUncompletedFutureDoesNotBlockOthers(t *testing.T) {
	loop := New()
	hung := NewFuture[struct{}](loop)
	hung.Then(func(Result[struct{}]) { t.Error("hung future ran its callback") })

	ran := false
	Completed(loop, struct{}{}, nil).Then(func(Result[struct{}]) { ran = true })
	loop.RunUntilIdle()

	if !ran {
		t.Error("completed future did not run while another was pending")
	}
	if hung.Done() {
		t.Error("hung future reports done")
	}
}
