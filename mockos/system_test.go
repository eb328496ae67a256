package mockos_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"machinerun.io/blkdiag"
	"machinerun.io/blkdiag/mockos"
)

//nolint:funlen,gomnd
func TestSystem(t *testing.T) {
	Convey("testing System Model", t, func() {
		So(func() { mockos.System("unknown") }, ShouldPanic)

		sys := mockos.System("testdata/layout.json")
		So(sys, ShouldNotBeNil)

		Convey("Calling ListDevices should return all the devices in layout order", func() {
			devices, err := sys.ListDevices()
			So(err, ShouldBeNil)
			So(devices.Names(), ShouldResemble, []string{"sda", "sda1", "sdb", "sdc", "sdd"})

			sdb, ok := devices.Find("sdb")
			So(ok, ShouldBeTrue)
			So(sdb.Size, ShouldEqual, uint64(4000787030016))
			So(sdb.FSType, ShouldEqual, "btrfs")
			So(sdb.ActiveMountPoints(), ShouldResemble, []string{"/srv/data", "/srv/data/snapshots"})
		})

		Convey("Changing a listed device should not change the system", func() {
			devices, err := sys.ListDevices()
			So(err, ShouldBeNil)
			devices[2].MountPoints[0] = "/elsewhere"

			devices, err = sys.ListDevices()
			So(err, ShouldBeNil)
			So(devices[2].MountPoints[0], ShouldEqual, "/srv/data")
		})

		Convey("Calling Unmount should clear the mount points of the device", func() {
			err := sys.Unmount(blkdiag.Device{Name: "sdb"})
			So(err, ShouldBeNil)
			So(sys.Unmounted(), ShouldResemble, []string{"sdb"})

			devices, _ := sys.ListDevices()
			sdb, _ := devices.Find("sdb")
			So(sdb.IsMounted(), ShouldBeFalse)

			Convey("and unmounting it again is not an error", func() {
				So(sys.Unmount(blkdiag.Device{Name: "sdb"}), ShouldBeNil)
				So(sys.Unmounted(), ShouldResemble, []string{"sdb"})
			})
		})

		Convey("Calling Unmount on a device with a configured error should fail", func() {
			err := sys.Unmount(blkdiag.Device{Name: "sdc"})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "target is busy")
		})

		Convey("Calling Unmount on an unknown device should fail", func() {
			So(sys.Unmount(blkdiag.Device{Name: "sdz"}), ShouldNotBeNil)
		})
	})

	Convey("testing a system built from devices", t, func() {
		sys := mockos.NewSystem(blkdiag.Device{Name: "vda", FSType: "btrfs"})

		devices, err := sys.ListDevices()
		So(err, ShouldBeNil)
		So(devices.Names(), ShouldResemble, []string{"vda"})

		sys.ListError = "lsblk exploded"
		_, err = sys.ListDevices()
		So(err, ShouldNotBeNil)
	})

	Convey("testing Load", t, func() {
		Convey("a missing layout should fail", func() {
			_, err := mockos.Load(filepath.Join(t.TempDir(), "missing.json"))
			So(err, ShouldNotBeNil)
		})

		Convey("a layout that is not json should fail", func() {
			path := filepath.Join(t.TempDir(), "bad.json")
			So(os.WriteFile(path, []byte("devices: []"), 0o600), ShouldBeNil)

			_, err := mockos.Load(path)
			So(err, ShouldNotBeNil)
		})

		Convey("a layout without unmount errors can unmount", func() {
			path := filepath.Join(t.TempDir(), "ok.json")
			So(os.WriteFile(path, []byte(`{"devices": [{"name": "vdb", "mountpoints": ["/mnt"]}]}`), 0o600), ShouldBeNil)

			sys, err := mockos.Load(path)
			So(err, ShouldBeNil)
			So(sys.Unmount(blkdiag.Device{Name: "vdb"}), ShouldBeNil)
			So(sys.Unmounted(), ShouldResemble, []string{"vdb"})
		})
	})
}
