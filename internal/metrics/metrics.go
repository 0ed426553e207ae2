// Package metrics exposes the Prometheus instruments shared by the API and worker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MarksTotal counts successfully recorded attendance, by provenance.
	MarksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classtrack_attendance_marked_total",
		Help: "Attendance records created, labelled by who marked them.",
	}, []string{"provenance"})

	// MarkRejections counts refused marking attempts, by failure reason.
	MarkRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classtrack_attendance_rejected_total",
		Help: "Attendance marking attempts refused, labelled by reason.",
	}, []string{"reason"})

	// Enrollments counts course joins.
	Enrollments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classtrack_enrollments_total",
		Help: "Course enrollments created.",
	})
)
