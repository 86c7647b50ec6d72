package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/points --output domain/points --outpkg pointsmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/waitlist --output domain/waitlist --outpkg waitlistmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Forwarder --dir ../domain/waitlist --output domain/waitlist --outpkg waitlistmock --filename forwarder_mock.go
