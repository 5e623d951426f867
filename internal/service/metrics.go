package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wiki_pages_created_total",
			Help: "Pages created, by initial state",
		},
		[]string{"state"}, // published, awaiting_approval
	)

	pageChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wiki_page_changes_total",
			Help: "Page updates, by how they were applied",
		},
		[]string{"path"}, // direct, queued
	)

	reviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wiki_reviews_total",
			Help: "Admin review decisions",
		},
		[]string{"target", "outcome"}, // page|edit, approved|rejected
	)

	invitationsIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wiki_invitations_issued_total",
			Help: "Invitations created, by delivery method",
		},
		[]string{"method"},
	)

	notificationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wiki_notification_failures_total",
			Help: "Invitation notifications that could not be delivered",
		},
		[]string{"method"},
	)

	invitationsPurgedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wiki_invitations_purged_total",
			Help: "Expired invitations removed by the purge job",
		},
	)
)
